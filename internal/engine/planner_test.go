package engine

import "testing"

func TestPlanSegmentsEvenSplit(t *testing.T) {
	segments := PlanSegments(1000, 4)

	want := []Segment{
		{Index: 0, Start: 0, End: 249},
		{Index: 1, Start: 250, End: 499},
		{Index: 2, Start: 500, End: 749},
		{Index: 3, Start: 750, End: 999},
	}

	if len(segments) != len(want) {
		t.Fatalf("got %d segments, want %d", len(segments), len(want))
	}
	for i, seg := range segments {
		if seg != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, seg, want[i])
		}
	}
}

func TestPlanSegmentsRemainder(t *testing.T) {
	segments := PlanSegments(1001, 4)

	if len(segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(segments))
	}
	last := segments[3]
	if last.Start != 750 || last.End != 1000 {
		t.Errorf("last segment = [%d,%d], want [750,1000]", last.Start, last.End)
	}
	if last.Size() != 251 {
		t.Errorf("last segment size = %d, want 251", last.Size())
	}
}

func TestPlanSegmentsZeroTotal(t *testing.T) {
	if segments := PlanSegments(0, 8); len(segments) != 0 {
		t.Errorf("got %d segments for empty file, want 0", len(segments))
	}
}

func TestPlanSegmentsMoreConnectionsThanBytes(t *testing.T) {
	segments := PlanSegments(3, 8)

	if len(segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(segments))
	}
	for i, seg := range segments {
		if seg.Start != int64(i) || seg.End != int64(i) || seg.Size() != 1 {
			t.Errorf("segment %d = %+v, want single byte at %d", i, seg, i)
		}
	}
}

// Partition property: for a range of totals and fanouts, segments must be
// contiguous, disjoint, and cover [0, total) exactly.
func TestPlanSegmentsCoverage(t *testing.T) {
	totals := []int64{1, 7, 100, 1000, 1001, 65536, 1<<20 + 13}
	fanouts := []int{1, 2, 3, 4, 8, 16, 31}

	for _, total := range totals {
		for _, n := range fanouts {
			segments := PlanSegments(total, n)

			var next int64
			var covered int64
			for i, seg := range segments {
				if seg.Start != next {
					t.Fatalf("T=%d N=%d: segment %d starts at %d, want %d", total, n, i, seg.Start, next)
				}
				if seg.End < seg.Start {
					t.Fatalf("T=%d N=%d: segment %d is inverted: %+v", total, n, i, seg)
				}
				covered += seg.Size()
				next = seg.End + 1
			}
			if covered != total {
				t.Errorf("T=%d N=%d: covered %d bytes, want %d", total, n, covered, total)
			}
			if next != total {
				t.Errorf("T=%d N=%d: segments end at %d, want %d", total, n, next, total)
			}
		}
	}
}

func TestSegmentResume(t *testing.T) {
	seg := Segment{Index: 2, Start: 500, End: 749}

	if got := seg.ResumeOffset(0); got != 500 {
		t.Errorf("ResumeOffset(0) = %d, want 500", got)
	}
	if got := seg.ResumeOffset(100); got != 600 {
		t.Errorf("ResumeOffset(100) = %d, want 600", got)
	}
	if seg.Done(0) {
		t.Error("fresh segment reported done")
	}
	if seg.Done(249) {
		t.Error("segment with one byte left reported done")
	}
	if !seg.Done(250) {
		t.Error("fully written segment not reported done")
	}
}
