// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"deckpress/internal/models"
)

var (
	slidePartName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	shapeIDAttr   = regexp.MustCompile(`<p:cNvPr\b[^>]*?\bid="(\d+)"`)
)

// slideShapes records, for one generated slide, the animation target of
// every shape in creation order ("" for shapes that are never animated).
type slideShapes struct {
	targets    []string
	animations []models.Animation
}

// injectTiming rewrites the slide parts of a generated package so each
// slide carries a p:timing element for its animations. Shapes are matched
// to targets by creation order, which is the order of their p:cNvPr ids.
// A slide whose shape count does not match is left without animations.
func injectTiming(pkg []byte, decks []slideShapes) ([]byte, []int, error) {
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return nil, nil, fmt.Errorf("open package: %w", err)
	}

	var skipped []int
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		data, err := readZipFile(f)
		if err != nil {
			return nil, nil, err
		}
		if m := slidePartName.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			if n >= 1 && n <= len(decks) {
				out, ok := addTiming(string(data), decks[n-1])
				if ok {
					data = []byte(out)
				} else {
					skipped = append(skipped, n-1)
				}
			}
		}
		hdr := f.FileHeader
		w, err := zw.CreateHeader(&hdr)
		if err != nil {
			return nil, nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), skipped, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// addTiming returns the slide XML with a timing element inserted. ok is
// false when the slide's shapes could not be matched to their targets.
func addTiming(xml string, s slideShapes) (string, bool) {
	if len(s.animations) == 0 {
		return xml, true
	}
	if strings.Contains(xml, "<p:timing") {
		return xml, false
	}

	// The group root's own cNvPr precedes every shape.
	body := xml
	if i := strings.Index(xml, "</p:nvGrpSpPr>"); i >= 0 {
		body = xml[i:]
	}
	var ids []int
	for _, m := range shapeIDAttr.FindAllStringSubmatch(body, -1) {
		id, _ := strconv.Atoi(m[1])
		ids = append(ids, id)
	}
	if len(ids) != len(s.targets) {
		return xml, false
	}

	spid := make(map[string]int, len(ids))
	for i, t := range s.targets {
		if t != "" {
			if _, seen := spid[t]; !seen {
				spid[t] = ids[i]
			}
		}
	}
	var timed []timedShape
	for _, a := range s.animations {
		if id, ok := spid[a.Target]; ok {
			timed = append(timed, timedShape{spid: id, anim: a})
		}
	}
	timing := timingXML(timed)
	if timing == "" {
		return xml, true
	}

	// p:timing follows p:clrMapOvr and p:transition and precedes p:extLst.
	at := strings.LastIndex(xml, "</p:sld>")
	if end := strings.Index(xml, "</p:cSld>"); end >= 0 {
		if ext := strings.Index(xml[end:], "<p:extLst"); ext >= 0 {
			at = end + ext
		}
	}
	if at < 0 {
		return xml, false
	}
	return xml[:at] + timing + xml[at:], true
}
