package observability

type Config struct {
	OtelEndpoint string
	OtelHeaders  string
	Insecure     bool
	ServiceName  string
	Environment  string
	// SampleRatio outside (0, 1) samples every trace.
	SampleRatio float64
}
