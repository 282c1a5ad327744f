package runner

import "testing"

func TestOptionsNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Options
		validate func(*testing.T, Options)
	}{
		{
			name:  "defaults",
			input: Options{},
			validate: func(t *testing.T, o Options) {
				if o.Concurrency != 1 {
					t.Errorf("Concurrency = %d, want 1", o.Concurrency)
				}
			},
		},
		{
			name: "negative values corrected",
			input: Options{
				Concurrency:  -5,
				TotalOrders:  -10,
				GetsPerOrder: -1,
			},
			validate: func(t *testing.T, o Options) {
				if o.Concurrency != 1 {
					t.Errorf("Concurrency = %d, want 1", o.Concurrency)
				}
				if o.TotalOrders != 0 {
					t.Errorf("TotalOrders = %d, want 0", o.TotalOrders)
				}
				if o.GetsPerOrder != 0 {
					t.Errorf("GetsPerOrder = %d, want 0", o.GetsPerOrder)
				}
			},
		},
		{
			name: "preserve valid values",
			input: Options{
				Concurrency:  200,
				TotalOrders:  100,
				GetsPerOrder: 100,
			},
			validate: func(t *testing.T, o Options) {
				if o.Concurrency != 200 {
					t.Errorf("Concurrency = %d, want 200", o.Concurrency)
				}
				if o.TotalOrders != 100 {
					t.Errorf("TotalOrders = %d, want 100", o.TotalOrders)
				}
				if o.GetsPerOrder != 100 {
					t.Errorf("GetsPerOrder = %d, want 100", o.GetsPerOrder)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.input
			opts.normalize()
			tt.validate(t, opts)
		})
	}
}
