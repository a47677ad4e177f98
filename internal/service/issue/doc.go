// Package issue implements the issue request pipeline.
//
// The service validates payloads, assigns identifiers and timestamps, calls
// the Repository, and turns every outcome into either a payload or an *Error
// carrying a stable code. It depends on the Repository interface defined in
// this package and should never import from api/.
//
// Repository implementations live in repository/memory, repository/dynamo,
// repository/redisstore and repository/postgres.
package issue
