// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slides

import "time"

// idGenerator hands out time-based slide ids that never repeat or go
// backwards, even when called several times within one millisecond.
type idGenerator struct {
	last int64
	now  func() time.Time
}

func newIDGenerator(now func() time.Time, floor int64) *idGenerator {
	return &idGenerator{last: floor, now: now}
}

func (g *idGenerator) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// observe raises the floor so ids already present are never reissued.
func (g *idGenerator) observe(slides []int64) {
	for _, id := range slides {
		if id > g.last {
			g.last = id
		}
	}
}
