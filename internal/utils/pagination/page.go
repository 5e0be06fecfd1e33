package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/fx_reference_rates/internal/apperrors"
	"github.com/SscSPs/fx_reference_rates/internal/core/domain"
)

const (
	DefaultPage = 1
	DefaultSize = 20
	MaxSize     = 100
	MaxPage     = 1_000_000
)

// ParsePageRequest reads 1-based page and size query values. Empty values take the defaults;
// sizes above MaxSize are clamped and pages above MaxPage are rejected.
func ParsePageRequest(pageParam, sizeParam string) (domain.PageRequest, error) {
	page, err := parsePositive("page", pageParam, DefaultPage)
	if err != nil {
		return domain.PageRequest{}, err
	}
	if page > MaxPage {
		return domain.PageRequest{}, fmt.Errorf("%w: page must not exceed %d, got %d", apperrors.ErrValidation, MaxPage, page)
	}

	size, err := parsePositive("size", sizeParam, DefaultSize)
	if err != nil {
		return domain.PageRequest{}, err
	}
	if size > MaxSize {
		size = MaxSize
	}

	return domain.PageRequest{Page: page, Size: size}, nil
}

func parsePositive(name, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", apperrors.ErrValidation, name, raw)
	}
	return v, nil
}
