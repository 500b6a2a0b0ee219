package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-flanger/dsp/render"
	"github.com/cwbudde/algo-flanger/plugin"
)

type override struct {
	addr  plugin.Address
	value float64
}

type automationPoint struct {
	seconds float64
	addr    plugin.Address
	value   float64
	ramp    int
}

func parseAssignment(item string) (plugin.Address, float64, error) {
	name, raw, ok := strings.Cut(item, "=")
	if !ok {
		return 0, 0, fmt.Errorf("expected name=value, got %q", item)
	}

	addr, err := plugin.ParseAddress(strings.TrimSpace(name))
	if err != nil {
		return 0, 0, err
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value for %s: %w", addr, err)
	}

	return addr, value, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseOverrides(s string) ([]override, error) {
	var out []override
	for _, item := range splitList(s) {
		addr, value, err := parseAssignment(item)
		if err != nil {
			return nil, err
		}
		out = append(out, override{addr: addr, value: value})
	}
	return out, nil
}

// parseAutomation reads name=value@seconds items and sorts them by time.
func parseAutomation(s string, ramp int) ([]automationPoint, error) {
	if ramp < 0 {
		return nil, fmt.Errorf("ramp must be >= 0: %d", ramp)
	}

	var out []automationPoint
	for _, item := range splitList(s) {
		assignment, at, ok := strings.Cut(item, "@")
		if !ok {
			return nil, fmt.Errorf("expected name=value@seconds, got %q", item)
		}

		addr, value, err := parseAssignment(assignment)
		if err != nil {
			return nil, err
		}

		seconds, err := strconv.ParseFloat(strings.TrimSpace(at), 64)
		if err != nil || seconds < 0 || math.IsInf(seconds, 0) {
			return nil, fmt.Errorf("invalid time in %q", item)
		}

		out = append(out, automationPoint{seconds: seconds, addr: addr, value: value, ramp: ramp})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].seconds < out[j].seconds })

	return out, nil
}

// schedule turns automation points into per-block events.
type schedule struct {
	points []automationPoint
	frames []int64
	next   int
	events []render.Event
}

func newSchedule(points []automationPoint, sampleRate float64) *schedule {
	s := &schedule{
		points: points,
		frames: make([]int64, len(points)),
		events: make([]render.Event, 0, len(points)),
	}
	for i, p := range points {
		s.frames[i] = int64(math.Round(p.seconds * sampleRate))
	}
	return s
}

// block returns the events falling inside [start, start+frames). The
// returned slice is reused by the next call.
func (s *schedule) block(start int64, frames int) []render.Event {
	s.events = s.events[:0]
	end := start + int64(frames)

	for s.next < len(s.points) && s.frames[s.next] < end {
		p := s.points[s.next]
		offset := int(max(s.frames[s.next]-start, 0))
		s.events = append(s.events, render.ParameterEvent(offset, uint64(p.addr), p.value, p.ramp))
		s.next++
	}

	return s.events
}
