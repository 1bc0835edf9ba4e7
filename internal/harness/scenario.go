package harness

// Scenario is one end-to-end verification case: the input lines fed to the
// tethered job and the name of the container file they are written to.
type Scenario struct {
	Name          string
	Lines         []string
	InputFileName string
}

// WordCountScenario is the canonical seed case.
func WordCountScenario() Scenario {
	return Scenario{
		Name: "word-count",
		Lines: []string{
			"the quick brown fox jumps over the lazy dog",
			"the cow jumps over the moon",
			"the rain in spain falls mainly on the plains",
		},
		InputFileName: "lines.avro",
	}
}
