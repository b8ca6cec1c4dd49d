package advisor

// Code is the error code for advisor.
type Code int

// Advice codes.
const (
	// 20101 ~ 20199 SQLite statement error.
	StatementDryRunFailed Code = 20101

	// 21001 ~ 21099 dialect hints, see hint.Code.
)

// Int32 returns the code as stored in types.Advice.
func (c Code) Int32() int32 {
	return int32(c)
}
