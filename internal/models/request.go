// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package models

import "strings"

// GenerationRequest describes one worksheet to generate. It is ephemeral and
// never persisted; only the resulting worksheet is.
type GenerationRequest struct {
	Subject string `json:"subject"`
	Level   string `json:"level"`
	Grade   string `json:"grade"`
	Topic   string `json:"topic"`
}

// TopicEmpty reports whether the topic is empty after trimming whitespace.
func (r GenerationRequest) TopicEmpty() bool {
	return strings.TrimSpace(r.Topic) == ""
}
