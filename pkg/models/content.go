package models

// MindmapNode is a node below the mindmap root
type MindmapNode struct {
	Name     string         `json:"name"`
	Children []*MindmapNode `json:"children"`
}

// Mindmap is the hierarchical concept map generated from a transcript
type Mindmap struct {
	Root     string         `json:"root"`
	Children []*MindmapNode `json:"children"`
}

// Flashcard is a single true/false question
type Flashcard struct {
	Question    string `json:"question"`
	Answer      bool   `json:"answer"`
	Explanation string `json:"explanation"`
}

// ProviderInfo describes a content generation backend
type ProviderInfo struct {
	Name        string  `json:"name"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
}

// ProviderStatus is ProviderInfo plus registry state
type ProviderStatus struct {
	ProviderInfo
	Current bool `json:"current"`
	Working bool `json:"working"`
}

// ProviderTestResult is the outcome of probing a provider
type ProviderTestResult struct {
	Provider string  `json:"provider"`
	Success  bool    `json:"success"`
	Error    *string `json:"error"`
}
