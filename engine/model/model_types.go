package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxBones is the number of slots in a skinning palette. Joints with a BoneID at or above this
// limit are still traversed but never written to the palette.
const MaxBones = 128

// NoBone marks a hierarchy node that is not a skinned joint (for example an armature node).
const NoBone = -1

// --- Skeleton Types ---

// Joint represents a single node in a skeleton hierarchy.
type Joint struct {
	// Name is the node's identifier, matched against clip bone names.
	Name string

	// BoneID is the palette slot for this joint, or NoBone for pass-through nodes.
	BoneID int

	// ParentIndex is the index of the parent node (-1 for roots).
	ParentIndex int

	// Bindpose is the joint's local transform at bind time.
	Bindpose mgl32.Mat4

	// InverseBindOffset transforms from model space to bone space at bind pose.
	InverseBindOffset mgl32.Mat4

	// Children are indices of child nodes, filled by NewSkeleton.
	Children []int
}

// IsJoint reports whether the node owns a palette slot.
func (j *Joint) IsJoint() bool {
	return j.BoneID >= 0
}

// Skeleton represents a joint hierarchy for skeletal animation.
// Parents own children for traversal; children refer back to their parent by index.
type Skeleton struct {
	// Joints is the array of all hierarchy nodes.
	Joints []Joint

	// RootIndices are indices of nodes with no parent.
	RootIndices []int

	// NameToIndex maps node names to their indices for quick lookup.
	NameToIndex map[string]int

	// RootJointID is the palette slot of the designated root joint, or NoBone.
	RootJointID int
}

// NewSkeleton builds a Skeleton from a flat node list whose ParentIndex fields describe the tree.
// Child lists are rebuilt, root indices collected and the root joint is the first joint reachable
// from a root whose parent is not itself a joint.
//
// Parameters:
//   - joints: the hierarchy nodes in any order; every ParentIndex must be -1 or a valid index
//
// Returns:
//   - *Skeleton: the built skeleton
//   - error: an error if a parent index is out of range or the parent links form a cycle
func NewSkeleton(joints []Joint) (*Skeleton, error) {
	s := &Skeleton{
		Joints:      make([]Joint, len(joints)),
		NameToIndex: make(map[string]int, len(joints)),
		RootJointID: NoBone,
	}
	copy(s.Joints, joints)

	for i := range s.Joints {
		s.Joints[i].Children = nil
	}
	for i := range s.Joints {
		j := &s.Joints[i]
		s.NameToIndex[j.Name] = i
		if j.ParentIndex < 0 {
			j.ParentIndex = -1
			s.RootIndices = append(s.RootIndices, i)
			continue
		}
		if j.ParentIndex >= len(s.Joints) || j.ParentIndex == i {
			return nil, fmt.Errorf("joint %q has invalid parent index %d", j.Name, j.ParentIndex)
		}
		s.Joints[j.ParentIndex].Children = append(s.Joints[j.ParentIndex].Children, i)
	}

	visited := 0
	var walk func(i int)
	walk = func(i int) {
		visited++
		if s.RootJointID == NoBone && s.IsRootMotionJoint(i) {
			s.RootJointID = s.Joints[i].BoneID
		}
		for _, c := range s.Joints[i].Children {
			walk(c)
		}
	}
	for _, r := range s.RootIndices {
		walk(r)
	}
	if visited != len(s.Joints) {
		return nil, fmt.Errorf("skeleton hierarchy contains a cycle")
	}

	return s, nil
}

// Joint returns the index of the named node.
//
// Returns:
//   - int: the node index
//   - error: ErrBoneNotFound if no node has that name
func (s *Skeleton) Joint(name string) (int, error) {
	i, ok := s.NameToIndex[name]
	if !ok {
		return -1, fmt.Errorf("joint %q: %w", name, ErrBoneNotFound)
	}
	return i, nil
}

// IsRootMotionJoint reports whether node i is a joint whose parent is absent or not a joint.
// These are the joints that root motion strips translation from.
func (s *Skeleton) IsRootMotionJoint(i int) bool {
	j := &s.Joints[i]
	if !j.IsJoint() {
		return false
	}
	return j.ParentIndex < 0 || !s.Joints[j.ParentIndex].IsJoint()
}
