package config

import (
	"fmt"

	"github.com/quackverse/tokenscope/types"
)

var errEmptyTokenizers = types.NewError(types.ErrInvalidConfig, "tokenizers list must not be empty")

func errBadOutputFormat(format string) *types.Error {
	return types.NewError(types.ErrInvalidConfig,
		fmt.Sprintf("unknown output_format %q (want json, csv, or xlsx)", format))
}
