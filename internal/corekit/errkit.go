package corekit

import "strconv"

// Denied builds a PERMISSION_DENIED error naming the skill and the
// capability it lacked.
func Denied(skill, capability string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: "capability not granted", Skill: skill, Detail: capability}
}

// NotFound builds a SKILL_NOT_FOUND error for the given skill name.
func NotFound(skill string) *Error {
	return &Error{Kind: KindSkillNotFound, Message: "skill not found", Skill: skill}
}

// MethodNotFound builds a METHOD_NOT_FOUND error for a skill/method pair.
func MethodNotFound(skill, method string) *Error {
	return &Error{Kind: KindMethodNotFound, Message: "method not found", Skill: skill, Detail: method}
}

// Cycle builds a DEPENDENCY_CYCLE error naming at least one cycle member.
func Cycle(members []string) *Error {
	detail := ""
	for i, m := range members {
		if i > 0 {
			detail += ", "
		}
		detail += m
	}
	return &Error{Kind: KindDependencyCycle, Message: "dependency cycle detected", Detail: detail}
}

// UnmetDependency builds an UNMET_DEPENDENCY error for a skill/dep pair.
func UnmetDependency(skill, dep string) *Error {
	return &Error{Kind: KindUnmetDependency, Message: "required skill not found", Skill: skill, Detail: dep}
}

// VersionConstraintFailed builds a VERSION_CONSTRAINT_FAILED error.
func VersionConstraintFailed(skill, dep, constraint string) *Error {
	return &Error{Kind: KindVersionConstraintFailed, Message: "version constraint not satisfied", Skill: skill, Detail: dep + "@" + constraint}
}

// ChecksumMismatch builds a MIGRATION_CHECKSUM_MISMATCH error.
func ChecksumMismatch(skill string, version int) *Error {
	return &Error{Kind: KindMigrationChecksumMismatch, Message: "migration content changed after being applied", Skill: skill, Detail: strconv.Itoa(version)}
}
