package compare

import (
	"f1lapcompare/pkg/helper"
	"f1lapcompare/pkg/model"
	"time"
)

// ComputeDelta returns which driver is slower and by how much. When both times are equal the
// second label is reported; callers must not rely on a side in that case.
func ComputeDelta(label1 string, d1 time.Duration, label2 string, d2 time.Duration) model.Delta {
	if d1 > d2 {
		return model.Delta{Slower: label1, Gap: d1 - d2}
	}
	return model.Delta{Slower: label2, Gap: d2 - d1}
}

// DeltaText renders a delta as "<slower> +M:SS.mmm".
func DeltaText(d model.Delta) string {
	return d.Slower + " +" + helper.FormatLapTime(d.Gap)
}
