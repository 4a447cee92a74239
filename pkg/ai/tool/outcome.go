package tool

// Kind tags which variant of Outcome is populated.
type Kind int

const (
	KindText Kind = iota
	KindStructured
)

func (k Kind) String() string {
	if k == KindStructured {
		return "structured"
	}
	return "text"
}

// Outcome is a decoded tool result: either a structured mapping or free text.
type Outcome struct {
	Kind Kind
	Data map[string]interface{}
	Text string
}

func Structured(data map[string]interface{}) Outcome {
	return Outcome{Kind: KindStructured, Data: data}
}

func Text(text string) Outcome {
	return Outcome{Kind: KindText, Text: text}
}

func (o Outcome) IsStructured() bool {
	return o.Kind == KindStructured
}
