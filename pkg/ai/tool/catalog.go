package tool

// Spec documents one tool the router may pick. Argument schemas are prose for
// the routing model; they are not validated here.
type Spec struct {
	Name        string
	Description string
	Arguments   []Argument
}

type Argument struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

const (
	ListRuns    = "list_runs"
	GetSummary  = "get_summary"
	GetRun      = "get_run"
	CompareRuns = "compare_runs"
)

// Catalog is the closed set of tools exposed by the evaluation tool server.
var Catalog = []Spec{
	{
		Name:        ListRuns,
		Description: "List recent evaluation runs, newest first.",
		Arguments: []Argument{
			{Name: "limit", Type: "integer", Description: "maximum number of runs, default 10"},
			{Name: "status", Type: "string", Description: "filter by status: pending, running, completed, failed"},
		},
	},
	{
		Name:        GetSummary,
		Description: "Aggregate metrics for one evaluation run.",
		Arguments: []Argument{
			{Name: "run_id", Type: "string", Required: true, Description: "identifier of the run"},
		},
	},
	{
		Name:        GetRun,
		Description: "Full configuration and status of one evaluation run.",
		Arguments: []Argument{
			{Name: "run_id", Type: "string", Required: true, Description: "identifier of the run"},
		},
	},
	{
		Name:        CompareRuns,
		Description: "Side by side metric comparison of two or more runs.",
		Arguments: []Argument{
			{Name: "run_ids", Type: "array of string", Required: true, Description: "identifiers of the runs to compare"},
		},
	},
}

// Known reports whether name is in the catalog.
func Known(name string) bool {
	for _, spec := range Catalog {
		if spec.Name == name {
			return true
		}
	}
	return false
}
