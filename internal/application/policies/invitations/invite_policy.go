package policies

import (
	travelpolicy "travel-backend/internal/application/policies/travels"
	"travel-backend/internal/domain"
)

// CanViewInvites: the creator, an accepted member or an admin.
func CanViewInvites(a travelpolicy.TravelAccess) bool {
	return a.IsCreator() || a.IsAcceptedMember() || a.IsAdmin()
}

// CanInvite: the creator or an admin.
func CanInvite(a travelpolicy.TravelAccess) bool {
	return a.IsCreator() || a.IsAdmin()
}

// CanDeleteInvite: the invite's sender, the travel's creator or an admin.
func CanDeleteInvite(a travelpolicy.TravelAccess, invite *domain.TravelInvite) bool {
	return invite.SenderID == a.ActorID || a.IsCreator() || a.IsAdmin()
}

// CanRespondToInvite: only the addressee of the invite may accept or decline it.
func CanRespondToInvite(actor travelpolicy.Actor, invite *domain.TravelInvite) bool {
	return actor.Email != "" && actor.Email == invite.Email
}

// CanRespondToFriendInvite: only the receiver may accept or reject a friend invite.
func CanRespondToFriendInvite(actor travelpolicy.Actor, invite *domain.FriendInvite) bool {
	return actor.UserID == invite.ReceiverID
}
