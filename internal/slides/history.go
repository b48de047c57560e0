// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slides

import "deckpress/internal/models"

// DefaultHistoryLimit caps the number of snapshots kept for undo.
const DefaultHistoryLimit = 100

// history is a linear list of full slide-sequence snapshots with a cursor.
// Invariant: 0 <= index < len(snapshots) whenever snapshots is non-empty.
type history struct {
	snapshots [][]models.Slide
	index     int
	limit     int // <= 0 means unbounded
}

func newHistory(initial []models.Slide, limit int) *history {
	return &history{
		snapshots: [][]models.Slide{initial},
		index:     0,
		limit:     limit,
	}
}

// record drops every snapshot after the cursor, appends snap, and moves
// the cursor onto it. When over the limit the oldest snapshots go first.
func (h *history) record(snap []models.Slide) {
	h.snapshots = append(h.snapshots[:h.index+1], snap)
	h.index = len(h.snapshots) - 1

	if h.limit > 0 && len(h.snapshots) > h.limit {
		excess := len(h.snapshots) - h.limit
		h.snapshots = append([][]models.Slide(nil), h.snapshots[excess:]...)
		h.index -= excess
	}
}

func (h *history) canUndo() bool { return h.index > 0 }

func (h *history) canRedo() bool { return h.index < len(h.snapshots)-1 }

// undo steps the cursor back and returns a copy of that snapshot.
func (h *history) undo() ([]models.Slide, bool) {
	if !h.canUndo() {
		return nil, false
	}
	h.index--
	return models.CloneSlides(h.snapshots[h.index]), true
}

// redo steps the cursor forward and returns a copy of that snapshot.
func (h *history) redo() ([]models.Slide, bool) {
	if !h.canRedo() {
		return nil, false
	}
	h.index++
	return models.CloneSlides(h.snapshots[h.index]), true
}

// HistoryState is a read-only view of the undo/redo cursor.
type HistoryState struct {
	Index   int  `json:"historyIndex"`
	Length  int  `json:"historyLength"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

// Backup is the persisted form of the undo history.
type Backup struct {
	Index     int              `json:"index"`
	Snapshots [][]models.Slide `json:"snapshots"`
}
