package domain

// InviteStatus is the lifecycle state shared by friend and travel invites.
// Pending is the only non-terminal state.
type InviteStatus = string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRejected InviteStatus = "rejected"
	InviteStatusDeclined InviteStatus = "declined"
)

// MembershipStatus of a TravelUser row.
type MembershipStatus = string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipAccepted MembershipStatus = "accepted"
	MembershipRejected MembershipStatus = "rejected"
)

// MemberRole of a TravelUser row. The creator holds full authority regardless of role.
type MemberRole = string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleAdmin  MemberRole = "admin"
)

// TravelStatus values.
const (
	TravelStatusDraft     = "draft"
	TravelStatusPlanned   = "planned"
	TravelStatusOngoing   = "ongoing"
	TravelStatusCompleted = "completed"
	TravelStatusCancelled = "cancelled"
)

func IsValidMemberRole(role string) bool {
	return role == MemberRoleMember || role == MemberRoleAdmin
}
