// Package tagquery parses free-text tag search expressions and lowers them
// into EXISTS sub-queries over JSON array columns.
//
// Syntax:
//
//	rainbow dash              two AND-ed terms
//	"rainbow dash"            one term
//	(solo OR duo) pinkie      OR-group AND-ed with a term
//	!rarity  -rarity          negated term ("-" is shorthand for "!")
//	applejack^2  twi~0.5      weighted modifiers (boost, fuzzy)
//	source:ponybooru          special filter, when "source" is registered
//	pony*  ?ash               wildcards, when enabled at lowering time
//
// AND and OR keywords are separators only: terms outside parentheses are
// always AND-ed and terms inside parentheses are always OR-ed. Parsing never
// fails; malformed input degrades to literal terms.
package tagquery
