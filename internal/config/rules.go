package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/examinfo/internal/score"
)

// Rules is the on-disk shape of RULES_FILE:
//
//	subject_order: [英語, 数学, 国語]
//	common_token: 共通
//	validation: {name: default, min: 0, max: 100}
type Rules struct {
	SubjectOrder []string       `yaml:"subject_order"`
	CommonToken  string         `yaml:"common_token"`
	Validation   *score.RuleSet `yaml:"validation"`
}

// LoadRules reads path. An empty path yields the built-in defaults.
func LoadRules(path string) (Rules, error) {
	r := Rules{SubjectOrder: score.SubjectOrder, CommonToken: score.CommonToken}
	rs := score.DefaultRuleSet
	r.Validation = &rs
	if path == "" {
		return r, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	var f Rules
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Rules{}, fmt.Errorf("parse rules %s: %w", path, err)
	}
	if len(f.SubjectOrder) > 0 {
		r.SubjectOrder = f.SubjectOrder
	}
	if f.CommonToken != "" {
		r.CommonToken = f.CommonToken
	}
	if f.Validation != nil {
		if f.Validation.Max < f.Validation.Min {
			return Rules{}, errors.New("rules: validation.max must be >= validation.min")
		}
		if f.Validation.Name == "" {
			f.Validation.Name = "custom"
		}
		r.Validation = f.Validation
	}
	return r, nil
}

// Service builds the score service these rules describe.
func (r Rules) Service() *score.Service {
	rs := score.DefaultRuleSet
	if r.Validation != nil {
		rs = *r.Validation
	}
	return score.NewService(r.SubjectOrder, rs, score.WithCommonToken(r.CommonToken))
}
