package mongodb

import (
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Documents created by this package use UUID strings as _id. Databases
// populated by earlier Mongoose deployments use ObjectIDs; those surface as
// version 8 UUIDs carrying the 12 ObjectID bytes:
//
//	bytes 0-5   oid[0:6]
//	byte  6     0x80 (version 8)
//	byte  7     oid[6]
//	byte  8     0x80 (RFC 4122 variant)
//	bytes 9-13  oid[7:12]
//	bytes 14-15 zero
//
// The service only generates version 4 UUIDs, so the two never collide.

func uuidFromObjectID(oid primitive.ObjectID) uuid.UUID {
	var u uuid.UUID
	copy(u[0:6], oid[0:6])
	u[6] = 0x80
	u[7] = oid[6]
	u[8] = 0x80
	copy(u[9:14], oid[7:12])
	return u
}

func objectIDFromUUID(u uuid.UUID) (primitive.ObjectID, bool) {
	var oid primitive.ObjectID
	if u[6] != 0x80 || u[8] != 0x80 || u[14] != 0 || u[15] != 0 {
		return oid, false
	}
	copy(oid[0:6], u[0:6])
	oid[6] = u[7]
	copy(oid[7:12], u[9:14])
	return oid, true
}

// documentID returns the _id value stored for id.
func documentID(id uuid.UUID) any {
	if oid, ok := objectIDFromUUID(id); ok {
		return oid
	}
	return id.String()
}

// parseDocumentID converts a decoded _id into the domain id.
func parseDocumentID(v any) (uuid.UUID, error) {
	switch id := v.(type) {
	case string:
		return uuid.Parse(id)
	case primitive.ObjectID:
		return uuidFromObjectID(id), nil
	case nil:
		return uuid.Nil, fmt.Errorf("missing _id")
	}
	return uuid.Nil, fmt.Errorf("unsupported _id type %T", v)
}
