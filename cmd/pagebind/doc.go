// Command pagebind converts comic book archives (cbz, cbr) into PDF
// documents. It extracts page images, renders them in parallel groups, and
// merges the groups into a single output, optionally journaling each run.
package main
