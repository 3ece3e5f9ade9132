// Package testutil provides shared fixtures and helpers for tests
package testutil

// BuildingMarkdown is one building with two occupants
const BuildingMarkdown = `# 221B Baker Street (building)
- house number: 221b

## Sherlock (occupant)
- forename: Sherlock
- surname: Holmes

## John Watson (occupant)
- forename: John
- surname: Watson
`

// EpisodeMarkdown repeats a root heading so identity resolution decides
// whether the two become one row
const EpisodeMarkdown = `# Episode 1 (episode)
- title: Pilot
- runtime: 42

# Episode 1 (episode)
- title: Pilot (Director's Cut)
- aired: 1
`

// ReferenceMarkdown links records to each other with {identity} markers,
// including a forward reference
const ReferenceMarkdown = `# Baker Street (street)
- length: 1.3

## Sherlock (person)
- age: 34
- landlady: {Mrs Hudson}
- home: {baker street}

## Mrs Hudson (person)
- age: 60
- home: {baker street}
`

// DanglingReferenceMarkdown points at an identity that does not exist
const DanglingReferenceMarkdown = `# Season 1 (season)
- first episode: {pilot}
`
