package products

import (
	"errors"
	"strings"
)

var (
	ErrNameRequired = errors.New("product name is required")
	ErrInvalidPrice = errors.New("base price must not be negative")
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.BasePrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}
