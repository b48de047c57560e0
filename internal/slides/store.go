// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slides holds the in-memory slide sequence of one presentation
// together with its undo/redo history and clipboard.
package slides

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"deckpress/internal/models"
)

// Defaults for a freshly created slide.
const (
	DefaultContent    = "Click to add content"
	DefaultBackground = "#ffffff"
	DefaultTextColor  = "#000000"
)

// SnapshotFunc copies the slide sequence for the history. It may fail on
// pathological data; the store logs the failure and keeps the edit.
type SnapshotFunc func([]models.Slide) ([]models.Slide, error)

// Change describes a mutation that was just applied to the store.
type Change struct {
	Op    string
	Index int
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryLimit caps the number of undo snapshots. Zero or a negative
// value keeps every snapshot.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.limit = n }
}

// WithSnapshotFunc replaces the structural deep copy used for history.
func WithSnapshotFunc(fn SnapshotFunc) Option {
	return func(s *Store) { s.snapshot = fn }
}

// WithOnChange registers an observer called after every applied mutation.
func WithOnChange(fn func(Change)) Option {
	return func(s *Store) { s.onChange = fn }
}

// WithClock overrides the time source used for slide ids and meta stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store owns the slides, history, clipboard and cursor of one document.
// It is not safe for concurrent use; callers serialise access.
type Store struct {
	slides    []models.Slide
	current   int
	meta      models.Meta
	clipboard *models.Slide
	draft     bool

	hist     *history
	limit    int
	ids      *idGenerator
	snapshot SnapshotFunc
	onChange func(Change)
	now      func() time.Time
}

// New creates a store from doc. An empty document starts with one
// default slide.
func New(doc models.Document, opts ...Option) *Store {
	s := &Store{
		limit:    DefaultHistoryLimit,
		snapshot: cloneSnapshot,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = newIDGenerator(s.now, 0)
	s.load(doc)
	return s
}

func (s *Store) load(doc models.Document) {
	doc = doc.Clone()
	if len(doc.Slides) == 0 {
		doc.Slides = []models.Slide{s.defaultSlide()}
	}
	ids := make([]int64, len(doc.Slides))
	for i, sl := range doc.Slides {
		ids[i] = sl.ID
	}
	s.ids.observe(ids)

	if doc.Meta.CreatedAt.IsZero() {
		doc.Meta.CreatedAt = s.now().UTC()
	}
	if doc.Meta.UpdatedAt.IsZero() {
		doc.Meta.UpdatedAt = doc.Meta.CreatedAt
	}

	s.slides = doc.Slides
	s.meta = doc.Meta
	s.current = 0
	s.clipboard = nil
	s.draft = false
	s.hist = newHistory(models.CloneSlides(doc.Slides), s.limit)
}

// DefaultSlide returns the slide every new presentation starts with.
func DefaultSlide(id int64) models.Slide {
	return models.Slide{
		ID:         id,
		Title:      "Slide 1",
		Content:    DefaultContent,
		Background: DefaultBackground,
		TextColor:  DefaultTextColor,
		Layout:     models.LayoutTitleContent,
	}
}

func (s *Store) defaultSlide() models.Slide {
	return DefaultSlide(s.ids.next())
}

func cloneSnapshot(in []models.Slide) ([]models.Slide, error) {
	return models.CloneSlides(in), nil
}

// record pushes the live state onto the history. A failing snapshot is
// logged and the edit stands without an undo step.
func (s *Store) record(op string, index int) {
	s.draft = false
	snap, err := s.takeSnapshot()
	if err != nil {
		slog.Error("history snapshot failed, edit kept without undo",
			"op", op, "index", index, "error", err)
	} else {
		s.hist.record(snap)
	}
	s.notify(op, index)
}

func (s *Store) takeSnapshot() (snap []models.Slide, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot panic: %v", r)
		}
	}()
	return s.snapshot(s.slides)
}

func (s *Store) notify(op string, index int) {
	if s.onChange != nil {
		s.onChange(Change{Op: op, Index: index})
	}
}

// commitDraft folds pending history-skipping edits into one snapshot.
func (s *Store) commitDraft() {
	if s.draft {
		s.record("commit", s.current)
	}
}

func (s *Store) inRange(index int) bool {
	return index >= 0 && index < len(s.slides)
}

// replace swaps in a new slide sequence. Slides are never edited in place.
func (s *Store) replace(next []models.Slide) {
	s.slides = next
	s.meta.UpdatedAt = s.now().UTC()
}

// AddSlide appends a slide that inherits the colours of the last slide
// and makes it current. An empty layout means blank.
func (s *Store) AddSlide(layout models.Layout) int {
	s.commitDraft()
	if layout == "" || !layout.Valid() {
		layout = models.LayoutBlank
	}

	last := s.slides[len(s.slides)-1]
	sl := models.Slide{
		ID:         s.ids.next(),
		Background: last.Background,
		TextColor:  last.TextColor,
	}
	applyBody(&sl, Convert(TitleContentBody{
		Title:   fmt.Sprintf("Slide %d", len(s.slides)+1),
		Content: DefaultContent,
	}, layout))

	next := append(models.CloneSlides(s.slides), sl)
	s.replace(next)
	s.current = len(next) - 1
	s.record("add", s.current)
	return s.current
}

// DeleteSlide removes the slide at index. The last remaining slide is
// never deleted.
func (s *Store) DeleteSlide(index int) bool {
	if !s.inRange(index) || len(s.slides) <= 1 {
		return false
	}
	s.commitDraft()

	next := make([]models.Slide, 0, len(s.slides)-1)
	next = append(next, models.CloneSlides(s.slides[:index])...)
	next = append(next, models.CloneSlides(s.slides[index+1:])...)
	s.replace(next)
	if s.current > len(next)-1 {
		s.current = len(next) - 1
	}
	s.record("delete", index)
	return true
}

// DuplicateSlide inserts a copy of the slide at index right after it.
func (s *Store) DuplicateSlide(index int) bool {
	if !s.inRange(index) {
		return false
	}
	s.commitDraft()

	dup := s.slides[index].Clone()
	dup.ID = s.ids.next()
	dup.Title += " Copy"

	next := make([]models.Slide, 0, len(s.slides)+1)
	next = append(next, models.CloneSlides(s.slides[:index+1])...)
	next = append(next, dup)
	next = append(next, models.CloneSlides(s.slides[index+1:])...)
	s.replace(next)
	s.current = index + 1
	s.record("duplicate", index+1)
	return true
}

// SlidePatch is a partial slide update. Nil fields are left untouched.
type SlidePatch struct {
	Title            *string             `json:"title,omitempty"`
	Content          *string             `json:"content,omitempty"`
	Background       *string             `json:"background,omitempty"`
	TextColor        *string             `json:"textColor,omitempty"`
	ContentLeft      *string             `json:"contentLeft,omitempty"`
	ContentRight     *string             `json:"contentRight,omitempty"`
	CompLeftTitle    *string             `json:"compLeftTitle,omitempty"`
	CompLeftContent  *string             `json:"compLeftContent,omitempty"`
	CompRightTitle   *string             `json:"compRightTitle,omitempty"`
	CompRightContent *string             `json:"compRightContent,omitempty"`
	ImageURL         *string             `json:"imageUrl,omitempty"`
	Notes            *string             `json:"notes,omitempty"`
	Elements         *[]models.Element   `json:"elements,omitempty"`
	Animations       *[]models.Animation `json:"animations,omitempty"`
}

// Empty reports whether the patch sets no field.
func (p SlidePatch) Empty() bool {
	return p == SlidePatch{}
}

func (p SlidePatch) apply(sl *models.Slide) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&sl.Title, p.Title)
	set(&sl.Content, p.Content)
	set(&sl.Background, p.Background)
	set(&sl.TextColor, p.TextColor)
	set(&sl.ContentLeft, p.ContentLeft)
	set(&sl.ContentRight, p.ContentRight)
	set(&sl.CompLeftTitle, p.CompLeftTitle)
	set(&sl.CompLeftContent, p.CompLeftContent)
	set(&sl.CompRightTitle, p.CompRightTitle)
	set(&sl.CompRightContent, p.CompRightContent)
	set(&sl.ImageURL, p.ImageURL)
	set(&sl.Notes, p.Notes)
	if p.Elements != nil {
		tmp := models.Slide{Elements: *p.Elements}
		sl.Elements = tmp.Clone().Elements
	}
	if p.Animations != nil {
		sl.Animations = dedupeAnimations(*p.Animations)
	}
}

// UpdateSlide merges patch into the slide at index. With skipHistory the
// edit becomes a draft that is snapshotted later by Commit, by the next
// recorded mutation, or by Undo.
func (s *Store) UpdateSlide(index int, patch SlidePatch, skipHistory bool) bool {
	if !s.inRange(index) {
		return false
	}
	if !skipHistory {
		s.commitDraft()
	}

	next := models.CloneSlides(s.slides)
	patch.apply(&next[index])
	s.replace(next)

	if skipHistory {
		s.draft = true
		s.notify("draft", index)
		return true
	}
	s.record("update", index)
	return true
}

// Commit snapshots pending draft edits. It reports whether anything was
// pending.
func (s *Store) Commit() bool {
	if !s.draft {
		return false
	}
	s.record("commit", s.current)
	return true
}

// HasDraft reports whether history-skipping edits await a snapshot.
func (s *Store) HasDraft() bool { return s.draft }

// ApplyLayout converts the slide at index to layout, translating its
// content and clearing fields the new layout does not use.
func (s *Store) ApplyLayout(index int, layout models.Layout) bool {
	if !s.inRange(index) || !layout.Valid() {
		return false
	}
	if s.slides[index].Layout == layout {
		return false
	}
	s.commitDraft()

	next := models.CloneSlides(s.slides)
	next[index] = WithLayout(next[index], layout)
	s.replace(next)
	s.record("layout", index)
	return true
}

// ReorderSlides moves the slide at from to position to. The moved slide
// becomes current.
func (s *Store) ReorderSlides(from, to int) bool {
	if from == to || !s.inRange(from) || !s.inRange(to) {
		return false
	}
	s.commitDraft()

	next := models.CloneSlides(s.slides)
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	next = append(next[:to], append([]models.Slide{moved}, next[to:]...)...)
	s.replace(next)
	s.current = to
	s.record("reorder", to)
	return true
}

// Undo restores the previous snapshot. Pending drafts are committed first
// so a single undo drops the whole draft.
func (s *Store) Undo() bool {
	s.commitDraft()
	snap, ok := s.hist.undo()
	if !ok {
		return false
	}
	s.restore(snap)
	s.notify("undo", s.current)
	return true
}

// Redo re-applies the next snapshot.
func (s *Store) Redo() bool {
	if s.draft {
		return false
	}
	snap, ok := s.hist.redo()
	if !ok {
		return false
	}
	s.restore(snap)
	s.notify("redo", s.current)
	return true
}

func (s *Store) restore(snap []models.Slide) {
	s.replace(snap)
	if s.current > len(snap)-1 {
		s.current = len(snap) - 1
	}
}

// Copy places a deep copy of the slide at index on the clipboard.
func (s *Store) Copy(index int) bool {
	if !s.inRange(index) {
		return false
	}
	c := s.slides[index].Clone()
	s.clipboard = &c
	return true
}

// Paste appends the clipboard slide with a fresh id. The clipboard keeps
// its content so paste can repeat.
func (s *Store) Paste() bool {
	if s.clipboard == nil {
		return false
	}
	s.commitDraft()

	sl := s.clipboard.Clone()
	sl.ID = s.ids.next()
	next := append(models.CloneSlides(s.slides), sl)
	s.replace(next)
	s.current = len(next) - 1
	s.record("paste", s.current)
	return true
}

// HasClipboard reports whether a slide was copied.
func (s *Store) HasClipboard() bool { return s.clipboard != nil }

// SetAnimation adds anim to the slide at index, replacing any animation
// already bound to the same target.
func (s *Store) SetAnimation(index int, anim models.Animation) bool {
	if !s.inRange(index) || anim.Target == "" || anim.Type == "" {
		return false
	}
	s.commitDraft()
	if anim.ID == "" {
		anim.ID = uuid.NewString()
	}

	next := models.CloneSlides(s.slides)
	sl := &next[index]
	replaced := false
	for i, a := range sl.Animations {
		if a.Target == anim.Target {
			anim.Order = a.Order
			sl.Animations[i] = anim
			replaced = true
			break
		}
	}
	if !replaced {
		anim.Order = len(sl.Animations)
		sl.Animations = append(sl.Animations, anim)
	}
	s.replace(next)
	s.record("animation", index)
	return true
}

// RemoveAnimation drops the animation bound to target.
func (s *Store) RemoveAnimation(index int, target string) bool {
	if !s.inRange(index) {
		return false
	}
	pos := -1
	for i, a := range s.slides[index].Animations {
		if a.Target == target {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false
	}
	s.commitDraft()

	next := models.CloneSlides(s.slides)
	anims := append(next[index].Animations[:pos], next[index].Animations[pos+1:]...)
	for i := range anims {
		anims[i].Order = i
	}
	if len(anims) == 0 {
		anims = nil
	}
	next[index].Animations = anims
	s.replace(next)
	s.record("animation-remove", index)
	return true
}

// dedupeAnimations keeps the last animation per target, in first-seen
// order, and renumbers Order.
func dedupeAnimations(in []models.Animation) []models.Animation {
	if len(in) == 0 {
		return nil
	}
	pos := make(map[string]int, len(in))
	out := make([]models.Animation, 0, len(in))
	for _, a := range in {
		if i, ok := pos[a.Target]; ok {
			out[i] = a
			continue
		}
		pos[a.Target] = len(out)
		out = append(out, a)
	}
	for i := range out {
		out[i].Order = i
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}

// Current returns the index of the current slide.
func (s *Store) Current() int { return s.current }

// SetCurrent moves the current-slide pointer.
func (s *Store) SetCurrent(index int) bool {
	if !s.inRange(index) {
		return false
	}
	s.current = index
	return true
}

// Len returns the number of slides.
func (s *Store) Len() int { return len(s.slides) }

// Slides returns a deep copy of the slide sequence.
func (s *Store) Slides() []models.Slide {
	return models.CloneSlides(s.slides)
}

// Slide returns a copy of the slide at index.
func (s *Store) Slide(index int) (models.Slide, bool) {
	if !s.inRange(index) {
		return models.Slide{}, false
	}
	return s.slides[index].Clone(), true
}

// Meta returns the document meta.
func (s *Store) Meta() models.Meta { return s.meta }

// SetMeta replaces the document meta. Meta changes are not part of the
// slide history. CreatedAt is preserved and UpdatedAt is stamped.
func (s *Store) SetMeta(m models.Meta) {
	m.CreatedAt = s.meta.CreatedAt
	m.UpdatedAt = s.now().UTC()
	s.meta = m
	s.notify("meta", s.current)
}

// Document returns a deep copy of slides and meta.
func (s *Store) Document() models.Document {
	return models.Document{Slides: s.Slides(), Meta: s.meta}
}

// Reset reinitialises slides, history, clipboard and meta from doc. A
// zero document yields the default single-slide presentation.
func (s *Store) Reset(doc models.Document) {
	s.load(doc)
	s.notify("reset", 0)
}

// HistoryState reports the undo/redo cursor.
func (s *Store) HistoryState() HistoryState {
	return HistoryState{
		Index:   s.hist.index,
		Length:  len(s.hist.snapshots),
		CanUndo: s.hist.canUndo() || s.draft,
		CanRedo: s.hist.canRedo() && !s.draft,
	}
}

// HistoryBackup returns a copy of the history for persistence.
func (s *Store) HistoryBackup() Backup {
	snaps := make([][]models.Slide, len(s.hist.snapshots))
	for i, snap := range s.hist.snapshots {
		snaps[i] = models.CloneSlides(snap)
	}
	return Backup{Index: s.hist.index, Snapshots: snaps}
}

// RestoreHistory replaces the history with b. A backup whose cursor is out
// of range or whose current snapshot is empty is rejected. When the live
// slides differ from the snapshot under the cursor (a draft saved before
// it was committed, or a history mirror that fell behind the document)
// the live slides win and become a new snapshot after the cursor.
func (s *Store) RestoreHistory(b Backup) error {
	if len(b.Snapshots) == 0 || b.Index < 0 || b.Index >= len(b.Snapshots) {
		return fmt.Errorf("history backup: cursor %d outside %d snapshots", b.Index, len(b.Snapshots))
	}
	if len(b.Snapshots[b.Index]) == 0 {
		return fmt.Errorf("history backup: snapshot %d is empty", b.Index)
	}
	snaps := make([][]models.Slide, len(b.Snapshots))
	for i, snap := range b.Snapshots {
		snaps[i] = models.CloneSlides(snap)
		for _, sl := range snap {
			s.ids.observe([]int64{sl.ID})
		}
	}
	live := s.slides
	s.hist.snapshots = snaps
	s.hist.index = b.Index
	if s.limit > 0 && len(snaps) > s.limit {
		excess := len(snaps) - s.limit
		s.hist.snapshots = snaps[excess:]
		s.hist.index -= excess
		if s.hist.index < 0 {
			s.hist.index = 0
		}
	}
	s.draft = false
	if !reflect.DeepEqual(live, s.hist.snapshots[s.hist.index]) {
		s.hist.record(models.CloneSlides(live))
		slog.Warn("undo history behind saved document, kept the document",
			"history_index", b.Index, "history_length", len(b.Snapshots))
		return nil
	}
	s.restore(models.CloneSlides(s.hist.snapshots[s.hist.index]))
	return nil
}

// Load replaces the slide sequence with slides as a new recorded edit,
// used when restoring a saved revision.
func (s *Store) Load(slides []models.Slide) bool {
	if len(slides) == 0 {
		return false
	}
	s.commitDraft()
	next := models.CloneSlides(slides)
	ids := make([]int64, len(next))
	for i, sl := range next {
		ids[i] = sl.ID
	}
	s.ids.observe(ids)
	s.replace(next)
	if s.current > len(next)-1 {
		s.current = len(next) - 1
	}
	s.record("load", s.current)
	return true
}
