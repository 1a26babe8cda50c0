package vision

type callConfig struct {
	model       string
	temperature *float64
	maxTokens   int
	schema      *Schema
}

type Option func(*callConfig)

func WithModel(model string) Option {
	return func(c *callConfig) {
		c.model = model
	}
}

func WithTemperature(t float64) Option {
	return func(c *callConfig) {
		c.temperature = &t
	}
}

func WithMaxOutputTokens(n int) Option {
	return func(c *callConfig) {
		c.maxTokens = n
	}
}

// WithJSONSchema forces a structured JSON response matching the schema.
func WithJSONSchema(schema *Schema) Option {
	return func(c *callConfig) {
		c.schema = schema
	}
}
