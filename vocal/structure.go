package vocal

// analyzeStructure splits [0, duration] into five equal buckets, the last one
// absorbing the floating point remainder, and marks buckets overlapped by a segment
func analyzeStructure(segments []VocalSegment, duration float64) StructuralBreakdown {
	var sections [NumSections]SectionInfo

	bucket := 0.0
	if duration > 0 {
		bucket = duration / NumSections
	}

	for i := range sections {
		start := float64(i) * bucket
		end := start + bucket
		if i == NumSections-1 {
			end = max(duration, start)
		}

		sections[i] = SectionInfo{
			Section:   Section(i),
			Start:     start,
			Duration:  end - start,
			HasVocals: overlapsAny(segments, start, end),
		}
	}

	return StructuralBreakdown{
		Intro:  sections[SectionIntro],
		Verse:  sections[SectionVerse],
		Chorus: sections[SectionChorus],
		Bridge: sections[SectionBridge],
		Outro:  sections[SectionOutro],
	}
}

func overlapsAny(segments []VocalSegment, start, end float64) bool {
	if end <= start {
		return false
	}
	for _, seg := range segments {
		if seg.Start < end && seg.End > start {
			return true
		}
	}
	return false
}
