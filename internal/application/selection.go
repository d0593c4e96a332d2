package application

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/roomlayout/inventorymap/internal/domain"
	"github.com/roomlayout/inventorymap/internal/metrics"
)

type clipboardEntry struct {
	instance domain.Instance
	item     domain.Item
}

// Click applies canvas click semantics to the selection set. A plain click
// replaces the selection with the clicked instance; clicking the sole
// selected instance again is a no-op. A multi click toggles membership.
func (s *LayoutService) Click(instanceID string, multi bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return ErrNotLoaded
	}
	if _, ok := s.index.Instance(instanceID); !ok {
		return errors.New("instance not found")
	}
	if multi {
		if _, ok := s.selection[instanceID]; ok {
			delete(s.selection, instanceID)
		} else {
			s.selection[instanceID] = struct{}{}
		}
		return nil
	}
	if len(s.selection) == 1 {
		if _, ok := s.selection[instanceID]; ok {
			return nil
		}
	}
	s.selection = map[string]struct{}{instanceID: {}}
	return nil
}

// ClearSelection empties the selection set.
func (s *LayoutService) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{})
}

// Selection returns the selected instance ids in a stable order.
func (s *LayoutService) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionLocked()
}

func (s *LayoutService) selectionLocked() []string {
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *LayoutService) pruneSelectionLocked() {
	for id := range s.selection {
		if _, ok := s.index.Instance(id); !ok {
			delete(s.selection, id)
		}
	}
}

// Copy snapshots the selected item-backed rect instances into the
// clipboard as (instance, item) pairs. Wall segments and container-backed
// instances are not copyable.
func (s *LayoutService) Copy() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return 0, ErrNotLoaded
	}
	entries := make([]clipboardEntry, 0, len(s.selection))
	for _, id := range s.selectionLocked() {
		inst, ok := s.index.Instance(id)
		if !ok || inst.Kind != domain.KindRect {
			continue
		}
		item, ok := s.index.Item(inst.ReferenceID)
		if !ok {
			continue
		}
		entries = append(entries, clipboardEntry{instance: inst, item: item})
	}
	if len(entries) == 0 {
		return 0, errors.New("nothing copyable is selected")
	}
	s.clipboard = entries
	return len(entries), nil
}

// Paste materializes the clipboard into the active parent context, offset
// one cell down-right from the originals. A generic item gets a fresh
// duplicate named "<name> (Copy)"; a structural item (door, wall, shelf,
// floor patch) is only instance-duplicated, reusing the original
// reference. The pasted instances become the new selection.
func (s *LayoutService) Paste(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil, ErrNotLoaded
	}
	if len(s.clipboard) == 0 {
		return nil, errors.New("clipboard is empty")
	}
	parentID := s.activeParentLocked()
	if parentID == "" {
		metrics.MutationErrors.WithLabelValues("paste").Inc()
		return nil, ErrNoActiveContext
	}

	pasted := make([]string, 0, len(s.clipboard))
	for _, entry := range s.clipboard {
		inst := entry.instance
		inst.ID = uuid.NewString()
		inst.ParentID = parentID
		inst.PosX++
		inst.PosY++
		if !domain.ObjectTypeOf(entry.item.Type).Structural() {
			dup := entry.item
			dup.ID = uuid.NewString()
			dup.Name = entry.item.Name + " (Copy)"
			dup.ParentObjectID = parentID
			dup.SiteName, dup.RoomName, dup.ContainerName = "", "", ""
			if _, err := s.store.Append(ctx, SheetItems, encodeItem(dup)); err != nil {
				metrics.MutationErrors.WithLabelValues("paste").Inc()
				return nil, fmt.Errorf("duplicate item: %w", err)
			}
			inst.ReferenceID = dup.ID
		}
		if _, err := s.store.Append(ctx, SheetInstances, encodeInstance(inst)); err != nil {
			metrics.MutationErrors.WithLabelValues("paste").Inc()
			return nil, fmt.Errorf("append pasted instance: %w", err)
		}
		pasted = append(pasted, inst.ID)
	}
	if err := s.commitLocked(ctx, "paste"); err != nil {
		return nil, err
	}
	s.selection = make(map[string]struct{}, len(pasted))
	for _, id := range pasted {
		s.selection[id] = struct{}{}
	}
	return pasted, nil
}
