package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(
	electionHandler *ElectionHandler,
	voteHandler *VoteHandler,
	resultsHandler *ResultsHandler,
	adminHandler *AdminHandler,
	identity func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(identity)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/elections", func(r chi.Router) {
			r.Post("/", electionHandler.CreateElection)
			r.Get("/", electionHandler.ListElections)
			r.Get("/count", electionHandler.GetElectionCount)
			r.Get("/{id}", electionHandler.GetElection)
			r.Put("/{id}", electionHandler.UpdateElection)

			r.Post("/{id}/votes", voteHandler.VoteOnElection)
			r.Get("/{id}/ballots/me", voteHandler.GetMyBallot)

			r.Get("/{id}/results", resultsHandler.GetResults)
			r.Get("/{id}/winners", resultsHandler.GetWinners)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/", adminHandler.GetAdmin)
			r.Post("/transfer", adminHandler.TransferAdmin)
		})
	})

	return r
}
