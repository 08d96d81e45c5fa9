package engine

import (
	"fmt"

	"oip/ratesync/internal/business/rating"
	"oip/ratesync/pkg/config"
)

// New 按配置创建费率引擎
func New(name string, cfg config.EngineConfig) (rating.Engine, error) {
	switch cfg.Mode {
	case config.EngineModeHTTP:
		e, err := NewHTTPEngine(HTTPConfig{
			Name:    name,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			APIKey:  cfg.APIKey,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	case config.EngineModeMock, "":
		return NewMockEngine(MockConfig{Name: name, Carriers: cfg.Carriers}), nil
	default:
		return nil, fmt.Errorf("unknown engine mode %q for %s", cfg.Mode, name)
	}
}

// NewPair 创建主引擎与旧引擎
func NewPair(cfg config.EnginesConfig) (primary, legacy rating.Engine, err error) {
	if primary, err = New(string(rating.SourcePrimary), cfg.Primary); err != nil {
		return nil, nil, err
	}
	if legacy, err = New(string(rating.SourceLegacy), cfg.Legacy); err != nil {
		return nil, nil, err
	}
	return primary, legacy, nil
}
