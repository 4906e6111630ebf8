package target

// Step is one of the three captures done per target.
type Step string

const (
	StepHomepage Step = "homepage"
	StepCategory Step = "category"
	StepProduct  Step = "product"
)

// Steps lists the capture steps in the order they are visited.
var Steps = []Step{StepHomepage, StepCategory, StepProduct}

// FileName is the name of the image file a step is saved to.
func (s Step) FileName() string {
	return string(s) + ".png"
}

// LinkPattern is the href substring identifying the link that leads to
// this step. The homepage has none.
func (s Step) LinkPattern() string {
	switch s {
	case StepCategory:
		return "/collections/"
	case StepProduct:
		return "/products/"
	default:
		return ""
	}
}
