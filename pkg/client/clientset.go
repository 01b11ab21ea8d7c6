package client

// ClientSet contains all the sub-clients for different resource types
type ClientSet struct {
	baseClient *BaseClient

	Agent     Agent
	Tool      Tool
	Thread    Thread
	Knowledge Knowledge
}

// New creates a new Makima client set. No request is sent until a sub-client
// method is called.
func New(baseURL string, options ...ClientOption) *ClientSet {
	baseClient := NewBaseClient(baseURL, options...)

	return &ClientSet{
		baseClient: baseClient,
		Agent:      NewAgentClient(baseClient),
		Tool:       NewToolClient(baseClient),
		Thread:     NewThreadClient(baseClient),
		Knowledge:  NewKnowledgeClient(baseClient),
	}
}

// BaseURL returns the service URL the client set is bound to
func (c *ClientSet) BaseURL() string {
	if c.baseClient == nil {
		return ""
	}
	return c.baseClient.BaseURL
}
