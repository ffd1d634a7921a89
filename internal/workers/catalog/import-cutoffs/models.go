package importcutoffs

type Input struct {
	CSV string `json:"csv"`
}

type Output struct {
	BatchID  string   `json:"batchId"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Message  string   `json:"message"`
	Errors   []string `json:"errors,omitempty"`
}

// Columns every import file must carry, in any order.
var requiredColumns = []string{
	"collegeCode", "branchCode", "year", "round", "examType", "category",
	"openingRank", "closingRank", "openingPercentile", "closingPercentile",
}
