// Package chart loads the seed chart of accounts and journals from YAML.
package chart

import (
	"fmt"
	"os"

	"github.com/SscSPs/ledger_engine/internal/dto"
	"gopkg.in/yaml.v3"
)

// AccountSeed is one account in the seed file.
type AccountSeed struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

// JournalSeed is one journal in the seed file.
type JournalSeed struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Chart is the complete seed file.
type Chart struct {
	Accounts []AccountSeed `yaml:"accounts"`
	Journals []JournalSeed `yaml:"journals"`
}

// Load reads and parses the seed file at path.
func Load(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed file and rejects entries without a code.
func Parse(data []byte) (*Chart, error) {
	var c Chart
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	for i, a := range c.Accounts {
		if a.Code == "" || a.Name == "" {
			return nil, fmt.Errorf("accounts[%d]: code and name are required", i)
		}
	}
	for i, j := range c.Journals {
		if j.Code == "" {
			return nil, fmt.Errorf("journals[%d]: code is required", i)
		}
	}
	return &c, nil
}

// AccountRequests converts the account seeds into create requests.
func (c *Chart) AccountRequests() []dto.CreateAccountRequest {
	reqs := make([]dto.CreateAccountRequest, 0, len(c.Accounts))
	for _, a := range c.Accounts {
		reqs = append(reqs, dto.CreateAccountRequest{
			Code:        a.Code,
			Name:        a.Name,
			Category:    a.Category,
			Description: a.Description,
		})
	}
	return reqs
}

// JournalRequests converts the journal seeds into create requests.
func (c *Chart) JournalRequests() []dto.CreateJournalRequest {
	reqs := make([]dto.CreateJournalRequest, 0, len(c.Journals))
	for _, j := range c.Journals {
		reqs = append(reqs, dto.CreateJournalRequest{Code: j.Code, Name: j.Name, Type: j.Type})
	}
	return reqs
}
