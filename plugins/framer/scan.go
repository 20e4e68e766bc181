package framer

import "bytes"

// findFrame locates the first candidate frame in data.
//
//   - If no start sequence occurs in data at all, returns (-1, 0, false).
//   - If a start sequence occurs but no end sequence follows it, returns
//     the index of the *last* start sequence at or after the first one
//     (a later, still-unterminated start wins over an earlier one) and
//     false.
//   - If a start sequence is followed by an end sequence, the start index
//     is first adjusted forward to the last start sequence preceding the
//     end — this discards unterminated prefixes like
//     "$GPGGA,...$GPGSV,...*6c\r\n", so the later frame wins — and the
//     full frame length (start through end, inclusive) is returned with
//     found=true.
func findFrame(data, start, end []byte) (startIdx, frameLen int, found bool) {
	if len(data) == 0 || len(start) == 0 {
		return -1, 0, false
	}

	s := bytes.Index(data, start)
	if s < 0 {
		return -1, 0, false
	}

	searchFrom := s + len(start)
	eRel := bytes.Index(data[searchFrom:], end)
	if eRel < 0 {
		lastS := lastStartAfter(data, start, searchFrom, len(data), s)
		return lastS, 0, false
	}

	eAbs := searchFrom + eRel
	lastS := lastStartBefore(data, start, s, eAbs)
	frameLen = (eAbs - lastS) + len(end)
	return lastS, frameLen, true
}

// lastStartBefore returns the index of the last occurrence of start within
// data[from:limit]; from is itself a known occurrence, so it is always a
// valid fallback if no later one exists.
func lastStartBefore(data, start []byte, from, limit int) int {
	last := from
	cursor := from
	for cursor < limit {
		rel := bytes.Index(data[cursor:limit], start)
		if rel < 0 {
			break
		}
		last = cursor + rel
		cursor = last + len(start)
	}
	return last
}

// lastStartAfter returns the index of the last occurrence of start within
// data[from:limit], falling back to fallback (the original, already
// unterminated start) if none is found past from.
func lastStartAfter(data, start []byte, from, limit, fallback int) int {
	last := fallback
	cursor := from
	for cursor < limit {
		rel := bytes.Index(data[cursor:limit], start)
		if rel < 0 {
			break
		}
		last = cursor + rel
		cursor = last + len(start)
	}
	return last
}

// scanResult carries the outcome of scanning one buffer for frames.
type scanResult struct {
	frames  [][]byte
	tail    []byte
	skipped int
}

// scan repeatedly applies findFrame to data, emitting every complete frame
// it locates, and returns the leftover tail (either the bytes from a
// located-but-unterminated start sequence onward, or at most len(start)-1
// trailing bytes that might begin a future start sequence) along with the
// total count of bytes skipped (bytes that belonged to neither a frame nor
// the retained tail).
func scan(data, start, end []byte) scanResult {
	var result scanResult
	pos := 0

	for pos < len(data) {
		window := data[pos:]
		s, frameLen, found := findFrame(window, start, end)

		if found {
			frameStart := pos + s
			result.skipped += frameStart - pos
			frame := make([]byte, frameLen)
			copy(frame, data[frameStart:frameStart+frameLen])
			result.frames = append(result.frames, frame)
			pos = frameStart + frameLen
			continue
		}

		if s >= 0 {
			// A lone, unterminated start was located: retain from there on.
			openPos := pos + s
			result.skipped += openPos - pos
			result.tail = append([]byte(nil), data[openPos:]...)
			return result
		}

		// No start sequence anywhere in the remaining window: retain at
		// most len(start)-1 trailing bytes as a possible future prefix.
		keep := len(start) - 1
		if keep < 0 {
			keep = 0
		}
		if keep > len(window) {
			keep = len(window)
		}
		result.skipped += len(window) - keep
		if keep > 0 {
			result.tail = append([]byte(nil), window[len(window)-keep:]...)
		}
		return result
	}

	return result
}
