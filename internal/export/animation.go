// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"fmt"
	"strings"

	"deckpress/internal/models"
)

// effect is the OOXML rendition of an editor animation type.
type effect struct {
	name     string
	presetID int
	class    string // "entr" or "emph"
	subtype  int
	build    func(b *timingBuilder, spid, dur int)
}

func (e effect) entrance() bool { return e.class == "entr" }

// effectFor maps an animation type to its PowerPoint effect. Unknown
// types become a plain appear.
func effectFor(animType string) effect {
	switch animType {
	case "fadeIn":
		return effect{name: "fade", presetID: 10, class: "entr", build: func(b *timingBuilder, spid, dur int) {
			b.animEffect(spid, dur, "fade")
		}}
	case "slideInLeft":
		return flyEffect("fly-from-left", 8, "ppt_x", "0-#ppt_w/2", "#ppt_x")
	case "slideInRight":
		return flyEffect("fly-from-right", 2, "ppt_x", "1+#ppt_w/2", "#ppt_x")
	case "slideInUp":
		return flyEffect("fly-from-bottom", 4, "ppt_y", "1+#ppt_h/2", "#ppt_y")
	case "slideInDown":
		return flyEffect("fly-from-top", 1, "ppt_y", "0-#ppt_h/2", "#ppt_y")
	case "zoomIn":
		return effect{name: "zoom", presetID: 53, class: "entr", subtype: 16, build: func(b *timingBuilder, spid, dur int) {
			b.anim(spid, dur, "ppt_w", "0", "#ppt_w")
			b.anim(spid, dur, "ppt_h", "0", "#ppt_h")
			b.animEffect(spid, dur, "fade")
		}}
	case "bounce":
		return effect{name: "bounce", presetID: 26, class: "entr", build: func(b *timingBuilder, spid, dur int) {
			b.anim(spid, dur, "ppt_y", "#ppt_y-0.25", "#ppt_y")
			b.animEffect(spid, dur/2, "fade")
		}}
	case "pulse":
		return effect{name: "pulse", presetID: 26, class: "emph", build: func(b *timingBuilder, spid, dur int) {
			b.animScale(spid, dur, 105000)
		}}
	case "float":
		return effect{name: "float-in", presetID: 42, class: "entr", build: func(b *timingBuilder, spid, dur int) {
			b.anim(spid, dur, "ppt_y", "#ppt_y+0.1", "#ppt_y")
			b.animEffect(spid, dur, "fade")
		}}
	case "rotate":
		return effect{name: "spin", presetID: 8, class: "emph", build: func(b *timingBuilder, spid, dur int) {
			b.animRot(spid, dur, 21600000)
		}}
	}
	return effect{name: "appear", presetID: 1, class: "entr"}
}

func flyEffect(name string, subtype int, attr, from, to string) effect {
	return effect{name: name, presetID: 2, class: "entr", subtype: subtype, build: func(b *timingBuilder, spid, dur int) {
		b.anim(spid, dur, attr, from, to)
	}}
}

// timedShape binds an animation to the drawing id of the shape it targets.
type timedShape struct {
	spid int
	anim models.Animation
}

// timingXML renders the p:timing element playing anims in order after the
// slide starts. It returns "" when there is nothing to animate.
func timingXML(shapes []timedShape) string {
	if len(shapes) == 0 {
		return ""
	}
	b := &timingBuilder{}
	b.WriteString(`<p:timing><p:tnLst><p:par><p:cTn id="1" dur="indefinite" restart="never" nodeType="tmRoot"><p:childTnLst>`)
	b.WriteString(`<p:seq concurrent="1" nextAc="seek"><p:cTn id="2" dur="indefinite" nodeType="mainSeq"><p:childTnLst>`)
	b.next = 3
	fmt.Fprintf(b, `<p:par><p:cTn id="%d" fill="hold"><p:stCondLst><p:cond delay="indefinite"/><p:cond evt="onBegin" delay="0"><p:tn val="2"/></p:cond></p:stCondLst><p:childTnLst>`, b.id())
	fmt.Fprintf(b, `<p:par><p:cTn id="%d" fill="hold"><p:stCondLst><p:cond delay="0"/></p:stCondLst><p:childTnLst>`, b.id())

	for i, ts := range shapes {
		eff := effectFor(ts.anim.Type)
		dur := ts.anim.Duration
		if dur <= 0 {
			dur = 500
		}
		node := "withEffect"
		if i == 0 {
			node = "afterEffect"
		}
		fmt.Fprintf(b, `<p:par><p:cTn id="%d" presetID="%d" presetClass="%s" presetSubtype="%d" fill="hold" nodeType="%s"><p:stCondLst><p:cond delay="%d"/></p:stCondLst><p:childTnLst>`,
			b.id(), eff.presetID, eff.class, eff.subtype, node, max(ts.anim.Delay, 0))
		if eff.entrance() {
			b.setVisible(ts.spid)
		}
		if eff.build != nil {
			eff.build(b, ts.spid, dur)
		}
		b.WriteString(`</p:childTnLst></p:cTn></p:par>`)
	}

	b.WriteString(`</p:childTnLst></p:cTn></p:par>`)
	b.WriteString(`</p:childTnLst></p:cTn></p:par>`)
	b.WriteString(`</p:childTnLst></p:cTn>`)
	b.WriteString(`<p:prevCondLst><p:cond evt="onPrev" delay="0"><p:tgtEl><p:sldTgt/></p:tgtEl></p:cond></p:prevCondLst>`)
	b.WriteString(`<p:nextCondLst><p:cond evt="onNext" delay="0"><p:tgtEl><p:sldTgt/></p:tgtEl></p:cond></p:nextCondLst>`)
	b.WriteString(`</p:seq></p:childTnLst></p:cTn></p:par></p:tnLst></p:timing>`)
	return b.String()
}

type timingBuilder struct {
	strings.Builder
	next int
}

func (b *timingBuilder) id() int {
	id := b.next
	b.next++
	return id
}

func (b *timingBuilder) target(spid int) string {
	return fmt.Sprintf(`<p:tgtEl><p:spTgt spid="%d"/></p:tgtEl>`, spid)
}

func (b *timingBuilder) setVisible(spid int) {
	fmt.Fprintf(b, `<p:set><p:cBhvr><p:cTn id="%d" dur="1" fill="hold"><p:stCondLst><p:cond delay="0"/></p:stCondLst></p:cTn>%s`+
		`<p:attrNameLst><p:attrName>style.visibility</p:attrName></p:attrNameLst></p:cBhvr><p:to><p:strVal val="visible"/></p:to></p:set>`,
		b.id(), b.target(spid))
}

func (b *timingBuilder) animEffect(spid, dur int, filter string) {
	fmt.Fprintf(b, `<p:animEffect transition="in" filter="%s"><p:cBhvr><p:cTn id="%d" dur="%d"/>%s</p:cBhvr></p:animEffect>`,
		filter, b.id(), dur, b.target(spid))
}

func (b *timingBuilder) anim(spid, dur int, attr, from, to string) {
	fmt.Fprintf(b, `<p:anim calcmode="lin" valueType="num"><p:cBhvr additive="base"><p:cTn id="%d" dur="%d" fill="hold"/>%s`+
		`<p:attrNameLst><p:attrName>%s</p:attrName></p:attrNameLst></p:cBhvr><p:tavLst>`+
		`<p:tav tm="0"><p:val><p:strVal val="%s"/></p:val></p:tav>`+
		`<p:tav tm="100000"><p:val><p:strVal val="%s"/></p:val></p:tav></p:tavLst></p:anim>`,
		b.id(), dur, b.target(spid), attr, from, to)
}

func (b *timingBuilder) animScale(spid, dur, by int) {
	fmt.Fprintf(b, `<p:animScale><p:cBhvr><p:cTn id="%d" dur="%d" autoRev="1" fill="hold"/>%s</p:cBhvr><p:by x="%d" y="%d"/></p:animScale>`,
		b.id(), dur/2, b.target(spid), by, by)
}

func (b *timingBuilder) animRot(spid, dur, by int) {
	fmt.Fprintf(b, `<p:animRot by="%d"><p:cBhvr><p:cTn id="%d" dur="%d" fill="hold"/>%s<p:attrNameLst><p:attrName>r</p:attrName></p:attrNameLst></p:cBhvr></p:animRot>`,
		by, b.id(), dur, b.target(spid))
}
