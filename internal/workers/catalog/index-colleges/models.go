package indexcolleges

type Input struct{}

type Output struct {
	Indexed int      `json:"indexed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}
