package risk

import "fmt"

// FailurePrefix starts every user-visible failure message, so callers can
// branch on the prefix without structured error types.
const FailurePrefix = "❌"

// FormatResult renders the markdown block shown to the user.
func FormatResult(a *Assessment) string {
	return fmt.Sprintf(`%s **Prediction Result: %s**

**RAO Probability:** %.2f%%

**Clinical Recommendation:** %s

---

*Prediction based on a machine learning model — for reference only.*`,
		a.Icon, a.Level, a.Probability*100, a.Recommendation)
}

// FormatError renders a failure in the same channel as results.
func FormatError(err error) string {
	return fmt.Sprintf("%s Prediction failed: %v", FailurePrefix, err)
}
