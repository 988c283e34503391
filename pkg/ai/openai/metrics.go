package openai

import "github.com/doclens/doclens/pkg/ai"

func (client *ExtractionOpenAIClient) modifyMetrics(
	inputTokens int64,
	outputTokens int64,
	durationMs int64,
) {
	client.metricsLock.Lock()
	defer client.metricsLock.Unlock()

	client.metrics.InputTokens += int(inputTokens)
	client.metrics.OutputTokens += int(outputTokens)
	client.metrics.TotalTokens += int(inputTokens + outputTokens)
	client.metrics.DurationMs += durationMs
}

// ResetMetrics resets the accumulated model metrics to zero.
func (client *ExtractionOpenAIClient) ResetMetrics() {
	client.metricsLock.Lock()
	defer client.metricsLock.Unlock()

	client.metrics = ai.ModelMetrics{
		InputTokens:  0,
		OutputTokens: 0,
		TotalTokens:  0,
		DurationMs:   0,
	}
}

// GetMetrics returns a snapshot of the accumulated model metrics.
func (client *ExtractionOpenAIClient) GetMetrics() ai.ModelMetrics {
	client.metricsLock.Lock()
	defer client.metricsLock.Unlock()

	return client.metrics
}
