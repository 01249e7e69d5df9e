package store

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"initium/internal/domain/collection"
	"initium/internal/domain/document"
)

// Seed populates the starter dataset, but only into a pristine store: any
// existing user means the device already has data and the seed is skipped.
// A failed write is logged and skipped so one bad document cannot leave the
// store half-seeded behind an error.
func (s *Store) Seed(ctx context.Context) error {
	count, err := s.Count(ctx, collection.Users)
	if err != nil {
		return fmt.Errorf("failed to check for existing users: %w", err)
	}
	if count > 0 {
		s.log.Debug("store already initialized, skipping seed")
		return nil
	}

	now := time.Now()
	seeded := 0
	for name, docs := range seedData(now) {
		for _, doc := range docs {
			if err := s.Put(ctx, name, doc); err != nil {
				s.log.Error("failed to seed document", "collection", name, "id", doc.ID(), "error", err)
				continue
			}
			seeded++
		}
	}

	s.log.Info("starter dataset seeded", "documents", seeded)
	return nil
}

func seedData(now time.Time) map[string][]document.Document {
	day := 24 * time.Hour
	userID := "user-1"

	data := map[string][]document.Document{
		collection.Users: {
			{
				"id":               userID,
				"username":         "Explorateur",
				"email":            "user@initium.com",
				"level":            1,
				"xp":               0,
				"xp_to_next_level": 100,
				"created_at":       now,
			},
		},
		collection.Settings: {
			{"id": "theme", "key": "theme", "value": "violet"},
			{"id": "animations", "key": "animations", "value": "true"},
			{"id": "haptics", "key": "haptics", "value": "true"},
		},
		collection.Quests: {
			{
				"id":          "quest-1",
				"title":       "Apprendre React avancé",
				"description": "Maîtriser hooks, context et patterns avancés",
				"category":    "Apprentissage",
				"status":      "in_progress",
				"priority":    "high",
				"due_date":    now.Add(7 * day),
				"xp":          150,
				"progress":    40,
				"effort":      "high",
				"created_at":  now,
			},
			{
				"id":          "quest-2",
				"title":       "Finir le projet portfolio",
				"description": "Compléter toutes les sections et déployer",
				"category":    "Créativité",
				"status":      "in_progress",
				"priority":    "medium",
				"due_date":    now.Add(14 * day),
				"xp":          200,
				"progress":    60,
				"effort":      "medium",
				"created_at":  now,
			},
			{
				"id":          "quest-3",
				"title":       "Méditation quotidienne",
				"description": "20 minutes de méditation chaque matin",
				"category":    "Santé",
				"status":      "active",
				"priority":    "high",
				"xp":          50,
				"progress":    0,
				"recurring":   true,
				"created_at":  now,
			},
		},
		collection.Habits: {
			{
				"id":                "habit-1",
				"title":             "Faire du sport",
				"category":          "Santé",
				"frequency":         "daily",
				"target_per_week":   5,
				"streak":            12,
				"best_streak":       18,
				"last_completed":    now.Add(-1 * day),
				"xp_per_completion": 30,
				"completed_dates":   []any{},
				"created_at":        now,
			},
			{
				"id":                "habit-2",
				"title":             "Lire 30 minutes",
				"category":          "Apprentissage",
				"frequency":         "daily",
				"target_per_week":   7,
				"streak":            8,
				"best_streak":       15,
				"last_completed":    now.Add(-1 * day),
				"xp_per_completion": 25,
				"completed_dates":   []any{},
				"created_at":        now,
			},
			{
				"id":                "habit-3",
				"title":             "Journal personnel",
				"category":          "Vie sociale",
				"frequency":         "daily",
				"target_per_week":   5,
				"streak":            3,
				"best_streak":       10,
				"xp_per_completion": 20,
				"completed_dates":   []any{},
				"created_at":        now,
			},
		},
		collection.Projects: {
			{
				"id":          "project-1",
				"title":       "Application Mobile Fitness",
				"description": "Créer une app de suivi fitness complète",
				"status":      "in_progress",
				"priority":    "high",
				"progress":    35,
				"start_date":  now.Add(-30 * day),
				"target_date": now.Add(60 * day),
				"xp_total":    500,
				"created_at":  now,
			},
			{
				"id":          "project-2",
				"title":       "Blog personnel",
				"description": "Lancer un blog tech avec contenu régulier",
				"status":      "planning",
				"priority":    "medium",
				"progress":    10,
				"start_date":  now,
				"xp_total":    300,
				"created_at":  now,
			},
		},
		collection.Tasks: {
			{"id": "task-1", "project_id": "project-1", "title": "Design UI/UX", "status": "completed", "order": 1, "created_at": now},
			{"id": "task-2", "project_id": "project-1", "title": "Développer backend API", "status": "in_progress", "order": 2, "created_at": now},
			{"id": "task-3", "project_id": "project-1", "title": "Intégrer tracking GPS", "status": "todo", "order": 3, "created_at": now},
			{"id": "task-4", "project_id": "project-2", "title": "Choisir plateforme", "status": "completed", "order": 1, "created_at": now},
			{"id": "task-5", "project_id": "project-2", "title": "Écrire 5 articles", "status": "todo", "order": 2, "created_at": now},
		},
		collection.Notes: {
			{
				"id":         "note-1",
				"title":      "React Hooks Best Practices",
				"content":    "# React Hooks\n\n## useState\nUtiliser pour état local simple.\n\n## useEffect\nPour side effects et synchronisation.",
				"tags":       []any{"react", "hooks", "dev"},
				"linked_to":  []any{"quest-1"},
				"created_at": now,
				"updated_at": now,
			},
			{
				"id":         "note-2",
				"title":      "Idées projet",
				"content":    "# Idées\n\n- App de productivité gamifiée ✅\n- Tracker de livres\n- Journal intelligent",
				"tags":       []any{"idées", "projets"},
				"linked_to":  []any{},
				"created_at": now,
				"updated_at": now,
			},
		},
		collection.Training: {
			{
				"id":         "training-1",
				"type":       "Cardio",
				"intensity":  "high",
				"duration":   45,
				"xp":         50,
				"date":       now.Add(-1 * day),
				"notes":      "Excellente session de course",
				"created_at": now,
				"exercises": []any{
					map[string]any{"name": "Course à pied", "type": "Cardio", "duration": 30, "details": "Extérieur, rythme élevé"},
					map[string]any{"name": "Sprints", "type": "Cardio", "duration": 15, "reps": 10, "sets": 1, "details": "Sprint 100m x10"},
				},
			},
			{
				"id":         "training-2",
				"type":       "Musculation",
				"intensity":  "medium",
				"duration":   60,
				"xp":         45,
				"date":       now.Add(-2 * day),
				"created_at": now,
				"exercises": []any{
					map[string]any{"name": "Développé couché", "type": "Force", "reps": 10, "sets": 4, "details": "60kg, tempo 2-1-2"},
					map[string]any{"name": "Tractions", "type": "Force", "reps": 8, "sets": 3, "details": "Poids du corps"},
				},
			},
		},
		collection.Events: {
			{
				"id":         "event-1",
				"title":      "Réunion équipe",
				"type":       "meeting",
				"start_date": now.Add(2 * time.Hour),
				"end_date":   now.Add(3 * time.Hour),
				"created_at": now,
			},
			{
				"id":         "event-2",
				"title":      "Deadline projet",
				"type":       "deadline",
				"quest_id":   "quest-2",
				"start_date": now.Add(7 * day),
				"created_at": now,
			},
		},
		collection.Badges: {
			{"id": "badge-1", "user_id": userID, "type": "streak", "name": "Première Série", "description": "7 jours consécutifs", "earned_at": now},
			{"id": "badge-2", "user_id": userID, "type": "xp", "name": "Débutant", "description": "100 XP atteints", "earned_at": now},
		},
	}

	var analytics []document.Document
	for i := 7; i >= 0; i-- {
		analytics = append(analytics, document.Document{
			"id":               fmt.Sprintf("analytics-%d", i),
			"date":             now.Add(-time.Duration(i) * day),
			"xp_earned":        rand.Intn(100) + 50,
			"habits_completed": rand.Intn(3) + 1,
			"quests_completed": rand.Intn(2),
		})
	}
	data[collection.Analytics] = analytics

	return data
}
