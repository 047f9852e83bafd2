// internal/workers/underwriting/validate-field/models.go
package validatefield

type Input struct {
	Field         string `json:"field"`
	Value         string `json:"value"`
	PolicyProfile string `json:"policyProfile"`
}

type Output struct {
	Valid      bool        `json:"valid"`
	Normalized interface{} `json:"normalized"`
	ErrorKind  string      `json:"errorKind,omitempty"` // VALIDATION or POLICY_BLOCK
	ErrorCode  string      `json:"errorCode,omitempty"`
	Message    string      `json:"message,omitempty"`
}
