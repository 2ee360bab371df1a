package middleware

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/sideeye/pkg/domain"
)

// Codec turns a trial into the bytes a store persists and back.
type Codec interface {
	Marshal(trial *domain.Trial) ([]byte, error)
	Unmarshal(data []byte) (*domain.Trial, error)
}

// Middleware allows wrapping a Codec to add behavior.
type Middleware func(Codec) Codec

// JSONCodec is the default store encoding.
type JSONCodec struct {
	// Indent pretty-prints the output, for stores meant to be read by people.
	Indent bool
}

func (c JSONCodec) Marshal(trial *domain.Trial) ([]byte, error) {
	if c.Indent {
		return json.MarshalIndent(trial, "", "  ")
	}
	return json.Marshal(trial)
}

func (c JSONCodec) Unmarshal(data []byte) (*domain.Trial, error) {
	var trial domain.Trial
	if err := json.Unmarshal(data, &trial); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trial: %w", err)
	}
	return &trial, nil
}

// Chain applies middlewares to base; the first middleware is the outermost.
func Chain(base Codec, mws ...Middleware) Codec {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}
