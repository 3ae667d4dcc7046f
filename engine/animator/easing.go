package animator

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in_quad":      ease.InQuad,
	"out_quad":     ease.OutQuad,
	"in_out_quad":  ease.InOutQuad,
	"in_cubic":     ease.InCubic,
	"out_cubic":    ease.OutCubic,
	"in_out_cubic": ease.InOutCubic,
	"in_sine":      ease.InSine,
	"out_sine":     ease.OutSine,
	"in_out_sine":  ease.InOutSine,
	"in_expo":      ease.InExpo,
	"out_expo":     ease.OutExpo,
	"in_out_expo":  ease.InOutExpo,
	"in_out_circ":  ease.InOutCirc,
	"in_out_quart": ease.InOutQuart,
	"in_out_quint": ease.InOutQuint,
	"out_in_quad":  ease.OutInQuad,
	"out_in_cubic": ease.OutInCubic,
	"out_in_sine":  ease.OutInSine,
}

// EasingByName looks up a crossfade easing function by its snake_case name.
//
// Parameters:
//   - name: the easing name, for example "in_out_sine"; empty selects linear
//
// Returns:
//   - ease.TweenFunc: the easing function
//   - error: an error naming the known easings if name is unknown
func EasingByName(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.Linear, nil
	}
	fn, ok := easings[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q (known: %s)", name, strings.Join(EasingNames(), ", "))
	}
	return fn, nil
}

// EasingNames lists the accepted easing names in sorted order.
func EasingNames() []string {
	return common.SortedKeys(easings)
}

// shaper adapts an easing function to a 0..1 factor remap.
func shaper(fn ease.TweenFunc) func(float32) float32 {
	if fn == nil {
		return nil
	}
	return func(f float32) float32 {
		v, _ := gween.New(0, 1, 1, fn).Set(f)
		return v
	}
}
