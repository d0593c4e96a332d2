package application

import (
	"errors"

	"github.com/roomlayout/inventorymap/internal/domain"
)

// SelectRoom resets the navigation stack to a single room crumb. Selection
// and clipboard survive; they are scoped to instances, not to the view.
func (s *LayoutService) SelectRoom(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return ErrNotLoaded
	}
	room, ok := s.index.Room(roomID)
	if !ok {
		return errors.New("room not found")
	}
	s.crumbs = []domain.Breadcrumb{{ID: room.ID, DisplayName: room.Name}}
	s.selection = make(map[string]struct{})
	return nil
}

// NavigateInto descends into a container-like instance: the container
// backing the instance becomes the new active parent. Navigating to an id
// already on the stack truncates back to it instead of pushing twice.
func (s *LayoutService) NavigateInto(instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return ErrNotLoaded
	}
	inst, ok := s.index.Instance(instanceID)
	if !ok {
		return errors.New("instance not found")
	}
	cont, ok := s.index.Container(inst.ReferenceID)
	if !ok {
		return errors.New("instance has no container to enter")
	}
	if !domain.ObjectTypeOf(cont.Type).ContainerLike() {
		return errors.New("object cannot be entered")
	}
	for i, crumb := range s.crumbs {
		if crumb.ID == cont.ID {
			s.crumbs = s.crumbs[:i+1]
			s.selection = make(map[string]struct{})
			return nil
		}
	}
	s.crumbs = append(s.crumbs, domain.Breadcrumb{ID: cont.ID, DisplayName: cont.Name})
	s.selection = make(map[string]struct{})
	return nil
}

// NavigateTo jumps to a crumb already on the stack, popping everything
// after it.
func (s *LayoutService) NavigateTo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, crumb := range s.crumbs {
		if crumb.ID == id {
			s.crumbs = s.crumbs[:i+1]
			s.selection = make(map[string]struct{})
			return nil
		}
	}
	return errors.New("id is not on the navigation stack")
}

// Breadcrumbs returns a copy of the navigation stack, root first.
func (s *LayoutService) Breadcrumbs() []domain.Breadcrumb {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Breadcrumb, len(s.crumbs))
	copy(out, s.crumbs)
	return out
}

// ActiveParentID reports the id new placements attach to: the deepest
// crumb, or empty when no room has been selected.
func (s *LayoutService) ActiveParentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeParentLocked()
}

func (s *LayoutService) activeParentLocked() string {
	if len(s.crumbs) == 0 {
		return ""
	}
	return s.crumbs[len(s.crumbs)-1].ID
}

// pruneNavigationLocked drops crumbs whose entities vanished in the last
// reload. The stack is truncated at the first dead crumb so the remainder
// still forms a valid path.
func (s *LayoutService) pruneNavigationLocked() {
	for i, crumb := range s.crumbs {
		var ok bool
		if i == 0 {
			_, ok = s.index.Room(crumb.ID)
		} else {
			_, ok = s.index.Container(crumb.ID)
		}
		if !ok {
			s.crumbs = s.crumbs[:i]
			return
		}
	}
}
