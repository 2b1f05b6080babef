package goal

import (
	"strconv"
	"strings"
)

// NextGoalNumber returns the number of a new goal created under `parentID` at `level`,
// given a snapshot of every goal of the district.
//
// Roots are numbered "1", "2", ...; children "<parent number>.1", "<parent number>.2", ...
// The caller must take the snapshot right before inserting: two concurrent creations may
// still get the same number.
func NextGoalNumber(goals []Goal, parentID *string, level Level) string {
	var (
		maxSeq   int
		siblings int
		prefix   string
	)
	for _, g := range goals {
		if g.Level != level || !sameParent(g.ParentID, parentID) {
			continue
		}
		siblings++
		if seq, ok := lastSegment(g.GoalNumber); ok && seq > maxSeq {
			maxSeq = seq
		}
		if prefix == "" {
			prefix = parentSegments(g.GoalNumber)
		}
	}

	isRoot := level == LevelObjective || parentID == nil
	if isRoot {
		return strconv.Itoa(maxSeq + 1)
	}

	if parent, ok := findGoal(goals, *parentID); ok {
		prefix = parent.GoalNumber
	} else if siblings == 0 {
		return "1"
	}
	if prefix == "" {
		return strconv.Itoa(maxSeq + 1)
	}
	return prefix + "." + strconv.Itoa(maxSeq+1)
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func findGoal(goals []Goal, id string) (Goal, bool) {
	for _, g := range goals {
		if g.ID == id {
			return g, true
		}
	}
	return Goal{}, false
}

// lastSegment parses the trailing dotted segment of a goal number.
func lastSegment(number string) (int, bool) {
	seg := number
	if i := strings.LastIndex(number, "."); i >= 0 {
		seg = number[i+1:]
	}
	n, err := strconv.Atoi(strings.TrimSpace(seg))
	if err != nil {
		return 0, false
	}
	return n, true
}

// parentSegments returns every segment of a goal number but the last one.
func parentSegments(number string) string {
	if i := strings.LastIndex(number, "."); i >= 0 {
		return number[:i]
	}
	return ""
}

// CompareGoalNumbers compares dotted goal numbers segment by segment, numerically.
// Missing or unparseable segments count as 0, so "2" < "10" and "1.2" < "1.10".
func CompareGoalNumbers(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := segmentAt(as, i), segmentAt(bs, i)
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

func segmentAt(segs []string, i int) int {
	if i >= len(segs) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(segs[i]))
	if err != nil {
		return 0
	}
	return n
}
