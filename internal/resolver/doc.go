// Package resolver gathers section content for a requested reference
// set and everything it transitively mentions.
//
// Resolution is a breadth-first walk: extract a section, scan its text
// for embedded references, enqueue the new ones, repeat. A parent
// reference always wins over its descendants regardless of arrival
// order, so the result never contains a section twice, once on its own
// and once inside an ancestor.
package resolver
