// Package examination holds the concrete clinical sections (anamnesis
// screening and E1 to E10), their step tables, the model migrations, and a
// Catalog that compiles all of them into one instance index, step registry
// and persistence schema.
package examination
