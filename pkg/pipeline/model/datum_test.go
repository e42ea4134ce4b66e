package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dataflow/pkg/pipeline/model"
)

func TestDatumKinds(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		datum *model.Datum
		kind  model.DatumKind
		str   string
	}{
		"data":     {datum: model.NewDatum(3), kind: model.DatumData, str: "data(3)"},
		"empty":    {datum: model.EmptyDatum(), kind: model.DatumEmpty, str: "empty"},
		"complete": {datum: model.CompleteDatum(), kind: model.DatumComplete, str: "complete"},
		"flush":    {datum: model.FlushDatum(), kind: model.DatumFlush, str: "flush"},
		"error":    {datum: model.ErrorDatum("boom"), kind: model.DatumError, str: "error(boom)"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.kind, tc.datum.Kind())
			assert.Equal(t, tc.str, tc.datum.String())
		})
	}
}

func TestDatumValue(t *testing.T) {
	t.Parallel()

	got, err := model.DatumValue[int](model.NewDatum(42))
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = model.DatumValue[string](model.NewDatum(42))
	require.ErrorIs(t, err, model.ErrBadDatumCast)

	_, err = model.DatumValue[int](model.CompleteDatum())
	require.ErrorIs(t, err, model.ErrBadDatumCast)

	_, err = model.DatumValue[int](nil)
	require.ErrorIs(t, err, model.ErrBadDatumCast)
}

func TestErrorDatumMessage(t *testing.T) {
	t.Parallel()

	d := model.ErrorDatum("sensor offline")
	assert.Equal(t, "sensor offline", d.Message())
	assert.Nil(t, d.Value())
}
