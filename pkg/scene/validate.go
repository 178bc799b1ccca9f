package scene

import (
	"errors"
	"fmt"
)

// ErrInvalidScene wraps every problem reported by Validate
var ErrInvalidScene = errors.New("invalid scene")

// Validate checks everything the kernel assumes about its input: camera
// pose and resolution, sphere radii and material indices, material
// parameters and the bounce budget. All problems are reported together.
func (s *Scene) Validate() error {
	var problems []error

	if _, err := s.NewCamera(); err != nil {
		problems = append(problems, err)
	}
	if s.MaxBounces < 1 {
		problems = append(problems, fmt.Errorf("max bounces must be at least 1, got %d", s.MaxBounces))
	}

	for i, m := range s.Materials {
		if m == nil {
			problems = append(problems, fmt.Errorf("material %d is nil", i))
			continue
		}
		if err := m.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("material %d (%s): %w", i, m.Type(), err))
		}
	}

	for i, sphere := range s.Spheres {
		if err := sphere.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("sphere %d: %w", i, err))
		}
		if int(sphere.MaterialID) >= len(s.Materials) {
			problems = append(problems, fmt.Errorf("sphere %d: material index %d out of range (%d materials)",
				i, sphere.MaterialID, len(s.Materials)))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidScene, errors.Join(problems...))
}
