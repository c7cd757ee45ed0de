package wordml

import "go.uber.org/zap"

// ConvertOptions holds configuration for a conversion.
type ConvertOptions struct {
	// Rendering
	showHidden   bool
	noLabels     bool
	fragment     bool // HTML only
	inlineStyles bool // HTML only

	logger *zap.Logger
}

// defaultOptions returns the default conversion options.
func defaultOptions() ConvertOptions {
	return ConvertOptions{
		showHidden:   false,
		noLabels:     false,
		fragment:     false,
		inlineStyles: false,
		logger:       zap.NewNop(),
	}
}

// clone creates a copy of ConvertOptions.
func (o ConvertOptions) clone() ConvertOptions {
	return ConvertOptions{
		showHidden:   o.showHidden,
		noLabels:     o.noLabels,
		fragment:     o.fragment,
		inlineStyles: o.inlineStyles,
		logger:       o.logger,
	}
}
