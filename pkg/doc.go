// Package pkg provides the building blocks of the SQL sandbox: an in-memory
// SQLite database for learners, and hints that explain why a statement written
// for MySQL is rejected.
//
// # Package Structure
//
//   - hint: ordered catalog of dialect rules, FindHint is the entry point
//   - sandbox: SQLite session with seed data, script execution and views
//   - reviewer: high-level API to review a script with the registered rules
//   - advisor: rule execution engine and registration system
//   - rules/sqlite: the dialect and dry-run rules
//   - mysqlparser: statement splitting with line positions
//   - render: text and HTML presentation of outcomes, rooms and schema
//   - server: HTTP front end for a session
//   - tui: terminal front end for a session
//   - config: rule files and process settings
//   - types: core type definitions
//   - logger: logging abstraction layer
//
// # Getting Started
//
// Looking up a single statement:
//
//	res := hint.FindHint("ALTER TABLE sensores DROP COLUMN tipo;")
//	if res.Matched {
//	    fmt.Println(res.Text)
//	}
//
// Running a script against a fresh sandbox:
//
//	session, err := sandbox.Open(ctx)
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//	outcome, err := session.Exec(ctx, script)
//
// When a statement is rejected, execution stops there and the failed statement
// carries the engine error together with its hint.
//
// Reviewing without executing:
//
//	r := reviewer.New(types.Engine_SQLITE)
//	result, err := r.Review(ctx, script, reviewer.WithDriver(session.DB()))
//
// With a driver the dry-run rule runs the script in a transaction that is
// always rolled back.
//
// # Thread Safety
//
// Hint sets are immutable. Sessions serialize access to their single
// connection, so one session may be shared by the HTTP handlers.
//
// # Examples
//
// See examples/library-usage/.
package pkg
