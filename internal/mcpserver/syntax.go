package mcpserver

// QuerySyntaxReference describes the search query language for LLM
// consumers of the search_notes tool.
const QuerySyntaxReference = `# Ratatosk Search Query Syntax

## Full text

` + "```" + `
kubernetes deployment        two terms, both must match (implicit AND)
"exact phrase"               quoted phrase, matched as a whole
` + "```" + `

Terms match note titles and content, case-insensitively. Exact title
matches rank highest, then exact attribute values, then partial and fuzzy
hits.

## Attributes

` + "```" + `
#book                        note has the label "book" (any value)
#status=active               label equals value
#status!=done                label differs from value
#pages>=100                  numeric comparison when both sides are numbers
#published>=2020-01-01       date comparison when both sides parse as dates
#title*=*cook                label value contains substring
~author                      note has the relation "author"
~author.title=Tolkien        relation target's title equals value
~author.country=NO           relation target's label "country" equals value
` + "```" + `

Label names are case-sensitive. Comparison type (number, date, string) is
decided per comparison from the values themselves.

## Composition

` + "```" + `
#book #year>=2000            implicit AND
#book OR #article            explicit OR
NOT #archived                negation
(#book OR #article) #fiction grouping
` + "```" + `

## Ordering and limiting

` + "```" + `
#book orderBy title          sort by title ascending
#book orderBy #year desc     sort by a label value, descending
#book limit 10               at most 10 results
` + "```" + `

Directives in the query override any ordering/limit the caller configured.
Results are otherwise ranked by score, best first.
`
