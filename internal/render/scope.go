package render

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Resource is an intermediate artifact that must be released after assembly.
type Resource interface {
	Name() string
	Release() error
}

// Scope owns resources and releases each of them exactly once, in reverse
// order of acquisition. Releasing a scope more than once is safe.
type Scope struct {
	mu        sync.Mutex
	resources []*onceResource
	released  bool
}

type onceResource struct {
	Resource
	once sync.Once
	err  error
}

func (r *onceResource) release() error {
	r.once.Do(func() { r.err = r.Resource.Release() })
	return r.err
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// Add registers a resource. A resource added after the scope was released is
// released immediately.
func (s *Scope) Add(r Resource) error {
	s.mu.Lock()
	wrapped := &onceResource{Resource: r}
	if !s.released {
		s.resources = append(s.resources, wrapped)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return wrapped.release()
}

// Len reports the number of registered resources.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resources)
}

// Release releases every resource and joins their errors.
func (s *Scope) Release() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	resources := s.resources
	s.mu.Unlock()

	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		if err := resources[i].release(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", resources[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}

// FileResource removes a file on release. A file that no longer exists is not
// an error.
type FileResource string

func (f FileResource) Name() string { return string(f) }

func (f FileResource) Release() error {
	if err := os.Remove(string(f)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DirResource removes a directory tree on release.
type DirResource string

func (d DirResource) Name() string { return string(d) }

func (d DirResource) Release() error {
	return os.RemoveAll(string(d))
}
