package prediction

// ResolutionStep names the rule that picked the positive class.
type ResolutionStep string

const (
	StepLiteral         ResolutionStep = "literal"
	StepNumericOne      ResolutionStep = "numeric_one"
	StepTwoClassDefault ResolutionStep = "two_class_default"
	StepFirstIndex      ResolutionStep = "first_index"
)

// Fallback reports whether the step is a guess rather than a label match.
func (s ResolutionStep) Fallback() bool {
	return s == StepTwoClassDefault || s == StepFirstIndex
}

// Resolution is the index of the positive (bankrupt) class.
type Resolution struct {
	Index int
	Step  ResolutionStep
}

var positiveStrings = map[string]bool{
	"failed":   true,
	"Failed":   true,
	"FAILED":   true,
	"bankrupt": true,
	"Bankrupt": true,
	"BANKRUPT": true,
}

// ResolvePositiveClass picks the positive class index. Rules in order, first
// match wins:
//  1. a label equal to the number 1 or one of the recognized failure strings
//  2. a label of any numeric encoding equal to 1
//  3. index 1 when there are exactly two classes
//  4. index 0
func ResolvePositiveClass(classes []Label) Resolution {
	for i, c := range classes {
		if isPositiveLiteral(c) {
			return Resolution{Index: i, Step: StepLiteral}
		}
	}

	for i, c := range classes {
		if v, ok := c.Numeric(); ok && v == 1 {
			return Resolution{Index: i, Step: StepNumericOne}
		}
	}

	if len(classes) == 2 {
		return Resolution{Index: 1, Step: StepTwoClassDefault}
	}
	return Resolution{Index: 0, Step: StepFirstIndex}
}

func isPositiveLiteral(l Label) bool {
	switch l.kind {
	case IntLabelKind:
		return l.i == 1
	case FloatLabelKind:
		return l.f == 1
	case StringLabelKind:
		return positiveStrings[l.s]
	default:
		return false
	}
}

// IsPositive reports whether predicted is the positive class. When the two
// labels cannot be compared it falls back to predicted being numerically 1,
// and a predicted label that cannot be read as a number is not positive.
func IsPositive(predicted Label, classes []Label, res Resolution) bool {
	if res.Index >= 0 && res.Index < len(classes) {
		if equal, comparable := predicted.Compare(classes[res.Index]); comparable {
			return equal
		}
	}
	return numericallyOne(predicted)
}

func numericallyOne(l Label) bool {
	if v, ok := l.Numeric(); ok {
		return v == 1
	}
	v, ok := coerceNumeric(l.s)
	return ok && v == 1
}

// IsPositiveTarget maps a ground-truth label onto the positive class with
// the same literals ResolvePositiveClass recognizes.
func IsPositiveTarget(l Label) bool {
	if isPositiveLiteral(l) {
		return true
	}
	v, ok := l.Numeric()
	return ok && v == 1
}
