package dto

type ListProposalsQuery struct {
	Status string `query:"status"`
}
