package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty kind returns ErrKindEmpty",
			config:  Config{},
			wantErr: ErrKindEmpty,
		},
		{
			name:    "unknown kind returns ErrKindUnknown",
			config:  Config{Kind: "mongo"},
			wantErr: ErrKindUnknown,
		},
		{
			name:    "memory needs nothing else",
			config:  Config{Kind: AdapterMemory},
			wantErr: nil,
		},
		{
			name:    "sql with unknown dialect returns ErrDialectUnknown",
			config:  Config{Kind: AdapterSQL, Dialect: "oracle", DSN: "x"},
			wantErr: ErrDialectUnknown,
		},
		{
			name:    "sql without dsn returns ErrDSNEmpty",
			config:  Config{Kind: AdapterSQL, Dialect: DialectSQLite},
			wantErr: ErrDSNEmpty,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Kind: AdapterSQL, Dialect: DialectSQLite, DSN: "file:consent.db"},
			wantErr: nil,
		},
		{
			name:    "valid postgres config",
			config:  Config{Kind: AdapterSQL, Dialect: DialectPostgres, DSN: "postgres://localhost/consent"},
			wantErr: nil,
		},
		{
			name:    "custom without factory returns ErrFactoryNil",
			config:  Config{Kind: AdapterCustom},
			wantErr: ErrFactoryNil,
		},
		{
			name: "valid custom config",
			config: Config{Kind: AdapterCustom, Factory: func(Options) (Adapter, error) {
				return nil, nil
			}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStructuredErrorsUnwrap(t *testing.T) {
	schemaErr := &SchemaError{Entity: "consnet", Valid: []string{"consent", "subject"}}
	if !errors.Is(schemaErr, ErrSchemaNotFound) {
		t.Error("SchemaError should match ErrSchemaNotFound")
	}

	fieldErr := &FieldError{Entity: "consent", Field: "stauts", Valid: []string{"id", "status"}}
	if !errors.Is(fieldErr, ErrFieldNotFound) {
		t.Error("FieldError should match ErrFieldNotFound")
	}

	opErr := &OperatorError{Field: "status", Operator: OpIn, Reason: "value must be a slice"}
	if !errors.Is(opErr, ErrInvalidOperator) {
		t.Error("OperatorError should match ErrInvalidOperator")
	}

	inner := errors.New("disk full")
	qErr := &QueryError{Op: "create", Model: "consent", Err: inner}
	if !errors.Is(qErr, ErrQuery) {
		t.Error("QueryError should match ErrQuery")
	}
	if !errors.Is(qErr, inner) {
		t.Error("QueryError should unwrap to the backend error")
	}
}
