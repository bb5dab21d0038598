package report

type Report struct {
	Run       *RunReport       `json:"run,omitempty"`
	Publisher *PublisherReport `json:"publisher,omitempty"`
	Gateway   *GatewayReport   `json:"gateway,omitempty"`
}
