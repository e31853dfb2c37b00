// Package detail backs the program popup: it loads the full program record,
// works out whether it is already being recorded, and runs the watch, record
// and favorite round trips. Failed actions return an *ActionError and the
// unchanged view so the popup can stay open with its state intact.
package detail
