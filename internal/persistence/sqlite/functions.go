package sqlite

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"modernc.org/sqlite"
)

// foldFunction is the SQL name of the Unicode aware lower case function.
// SQLite's built in LOWER only folds ASCII letters.
const foldFunction = "fold_case"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(foldFunction, 1, foldCase); err != nil {
		panic(fmt.Sprintf("register %s: %v", foldFunction, err))
	}
}

func foldCase(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
