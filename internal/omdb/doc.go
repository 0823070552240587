// Package omdb provides the minimal OMDb API client used for movie lookups.
//
// It issues full-plot, movie-type title searches and normalizes the response
// into a canonical Movie record. The provider is known to answer with HTTP
// 200 even when no match exists, so classification is driven by the payload
// Response flag alone; transport failures fold into the same not-found
// outcome. An Option allows tests to supply custom HTTP clients without
// modifying production code.
package omdb
