package catalog

import (
	"github.com/avidal-games/complot/internal/domain/ledger"
	"github.com/avidal-games/complot/internal/domain/state"
)

// Default returns the builtin content catalog. YAML overlays can retune the
// numbers, but the shipped game is fully playable from these definitions.
func Default() *Catalog {
	c := &Catalog{
		Version:              "builtin-1",
		BaseManipulationRate: 1,
		StartingEraID:        "antiquity",
		StartingResources: map[ledger.Resource]float64{
			ledger.ManipulationPoints: 0,
			ledger.Credibility:        0,
			ledger.Influence:          0,
			ledger.Networks:           0,
		},

		Eras: []Era{
			{
				ID:         "antiquity",
				Name:       "Antiquity",
				UnlockCost: 0,
				Multipliers: map[ledger.Resource]float64{
					ledger.ManipulationPoints: 1.0,
				},
				Techniques: []Technique{
					{ID: "oracle_riddles", Name: "Oracle Riddles", Resource: ledger.Credibility, Factor: 1.1},
					{ID: "temple_rumors", Name: "Temple Rumors", Resource: ledger.ManipulationPoints, Factor: 1.1},
				},
			},
			{
				ID:         "middle_ages",
				Name:       "Middle Ages",
				UnlockCost: 100,
				Multipliers: map[ledger.Resource]float64{
					ledger.ManipulationPoints: 1.25,
					ledger.Credibility:        1.1,
				},
				Techniques: []Technique{
					{ID: "forged_relics", Name: "Forged Relics", Resource: ledger.Credibility, Factor: 1.2},
					{ID: "heresy_trials", Name: "Heresy Trials", Resource: ledger.Influence, Factor: 1.15},
				},
			},
			{
				ID:         "industrial",
				Name:       "Industrial Era",
				UnlockCost: 500,
				Multipliers: map[ledger.Resource]float64{
					ledger.ManipulationPoints: 1.5,
					ledger.Networks:           1.25,
				},
				Techniques: []Technique{
					{ID: "yellow_press", Name: "Yellow Press", Resource: ledger.ManipulationPoints, Factor: 1.3},
					{ID: "pamphlet_mills", Name: "Pamphlet Mills", Resource: ledger.Networks, Factor: 1.2},
				},
			},
			{
				ID:         "cold_war",
				Name:       "Cold War",
				UnlockCost: 2500,
				Multipliers: map[ledger.Resource]float64{
					ledger.ManipulationPoints: 2.0,
					ledger.Influence:          1.5,
				},
				Techniques: []Technique{
					{ID: "disinfo_bureaus", Name: "Disinformation Bureaus", Resource: ledger.Influence, Factor: 1.4},
					{ID: "front_groups", Name: "Front Groups", Resource: ledger.Networks, Factor: 1.3},
				},
			},
			{
				ID:         "digital",
				Name:       "Digital Age",
				UnlockCost: 10000,
				Multipliers: map[ledger.Resource]float64{
					ledger.ManipulationPoints: 3.0,
					ledger.Networks:           2.0,
				},
				Techniques: []Technique{
					{ID: "bot_farms", Name: "Bot Farms", Resource: ledger.ManipulationPoints, Factor: 1.5},
					{ID: "algorithmic_feeds", Name: "Algorithmic Feeds", Resource: ledger.Credibility, Factor: 1.4},
				},
			},
		},

		Upgrades: []Upgrade{
			{
				ID: "persuasive_rhetoric", EraID: "antiquity", Name: "Persuasive Rhetoric",
				Cost:   ledger.Cost{ledger.ManipulationPoints: 25},
				Effect: UpgradeEffect{Kind: EffectMultiplier, Resource: ledger.ManipulationPoints, Factor: 1.5},
			},
			{
				ID: "whisper_network", EraID: "antiquity", Name: "Whisper Network",
				Cost:   ledger.Cost{ledger.ManipulationPoints: 60},
				Effect: UpgradeEffect{Kind: EffectPassive, Resource: ledger.ManipulationPoints, Rate: 0.5},
			},
			{
				ID: "scriptorium", EraID: "middle_ages", Name: "Scriptorium",
				Cost:   ledger.Cost{ledger.ManipulationPoints: 150, ledger.Credibility: 20},
				Effect: UpgradeEffect{Kind: EffectPassive, Resource: ledger.Credibility, Rate: 0.3},
			},
			{
				ID: "itinerant_preachers", EraID: "middle_ages", Name: "Itinerant Preachers",
				Cost:   ledger.Cost{ledger.Influence: 80},
				Effect: UpgradeEffect{Kind: EffectMultiplier, Resource: ledger.Influence, Factor: 1.4},
			},
			{
				ID: "printing_press", EraID: "industrial", Name: "Printing Press",
				Cost:   ledger.Cost{ledger.ManipulationPoints: 400},
				Effect: UpgradeEffect{Kind: EffectMultiplier, Resource: ledger.ManipulationPoints, Factor: 2.0},
			},
			{
				ID: "telegraph_lines", EraID: "industrial", Name: "Telegraph Lines",
				Cost:   ledger.Cost{ledger.Networks: 120},
				Effect: UpgradeEffect{Kind: EffectPassive, Resource: ledger.Networks, Rate: 0.8},
			},
			{
				ID: "radio_jamming", EraID: "cold_war", Name: "Radio Jamming",
				Cost:   ledger.Cost{ledger.Influence: 600},
				Effect: UpgradeEffect{Kind: EffectPassive, Resource: ledger.Influence, Rate: 1.5},
			},
			{
				ID: "sleeper_cells", EraID: "cold_war", Name: "Sleeper Cells",
				Cost:   ledger.Cost{ledger.Networks: 800, ledger.Influence: 300},
				Effect: UpgradeEffect{Kind: EffectFeature, Feature: "covert_ops"},
			},
			{
				ID: "viral_templates", EraID: "digital", Name: "Viral Templates",
				Cost:   ledger.Cost{ledger.ManipulationPoints: 5000},
				Effect: UpgradeEffect{Kind: EffectMultiplier, Resource: ledger.ManipulationPoints, Factor: 3.0},
			},
			{
				ID: "deepfake_studio", EraID: "digital", Name: "Deepfake Studio",
				Cost:   ledger.Cost{ledger.Credibility: 2000, ledger.Networks: 1500},
				Effect: UpgradeEffect{Kind: EffectFeature, Feature: "synthetic_media"},
			},
		},

		Theories: []Theory{
			{
				ID: "divine_omens", EraID: "antiquity", Name: "Divine Omens",
				CostResource: ledger.ManipulationPoints, Cost: 50, SuccessRate: 0.7,
				EthicalImpact: -2, LivesImpacted: 50,
				Reward: map[ledger.Resource]float64{ledger.Credibility: 30, ledger.Influence: 10},
			},
			{
				ID: "poisoned_wells", EraID: "middle_ages", Name: "Poisoned Wells",
				CostResource: ledger.ManipulationPoints, Cost: 120, SuccessRate: 0.5,
				EthicalImpact: -8, LivesImpacted: 400,
				Reward: map[ledger.Resource]float64{ledger.Influence: 80, ledger.Networks: 20},
			},
			{
				ID: "secret_societies", EraID: "industrial", Name: "Secret Societies",
				CostResource: ledger.Credibility, Cost: 200, SuccessRate: 0.6,
				EthicalImpact: -4, LivesImpacted: 150,
				Reward: map[ledger.Resource]float64{ledger.Networks: 150, ledger.ManipulationPoints: 300},
			},
			{
				ID: "moon_landing_hoax", EraID: "cold_war", Name: "Moon Landing Hoax",
				CostResource: ledger.ManipulationPoints, Cost: 1500, SuccessRate: 0.4,
				EthicalImpact: -6, LivesImpacted: 800,
				Reward: map[ledger.Resource]float64{ledger.Credibility: 900, ledger.Influence: 500},
			},
			{
				ID: "chemtrails", EraID: "digital", Name: "Chemtrails",
				CostResource: ledger.Networks, Cost: 1000, SuccessRate: 0.55,
				EthicalImpact: -5, LivesImpacted: 1200,
				Reward: map[ledger.Resource]float64{ledger.ManipulationPoints: 4000, ledger.Networks: 800},
			},
			{
				ID: "flat_earth", EraID: "digital", Name: "Flat Earth Revival",
				CostResource: ledger.ManipulationPoints, Cost: 8000, SuccessRate: 0.3,
				EthicalImpact: -10, LivesImpacted: 5000,
				Reward: map[ledger.Resource]float64{ledger.Credibility: 5000, ledger.Influence: 3000, ledger.Networks: 2000},
			},
		},

		EthicalActions: []EthicalAction{
			{
				ID: "publish_retraction", Name: "Publish a Retraction",
				Cost:        ledger.Cost{ledger.Credibility: 40},
				EthicalGain: 5, CriticalThinkingGain: 3,
			},
			{
				ID: "fund_fact_checkers", Name: "Fund Fact-Checkers",
				Cost:        ledger.Cost{ledger.Influence: 150},
				EthicalGain: 10, CriticalThinkingGain: 8,
			},
			{
				ID: "teach_media_literacy", Name: "Teach Media Literacy",
				Cost:        ledger.Cost{ledger.Influence: 400, ledger.Networks: 100},
				EthicalGain: 15, CriticalThinkingGain: 20,
			},
			{
				ID: "whistleblow", Name: "Blow the Whistle",
				Cost:        ledger.Cost{ledger.Influence: 1000, ledger.Credibility: 500},
				EthicalGain: 30, CriticalThinkingGain: 25,
			},
		},

		Achievements: []Achievement{
			{
				ID: "first_whisper", Name: "First Whisper",
				Description: "Accumulate 10 manipulation points.",
				Condition:   Condition{Kind: CondResourceThreshold, Resource: ledger.ManipulationPoints, Threshold: 10},
				Reward:      Reward{Kind: RewardBonus, Resource: ledger.ManipulationPoints, Amount: 5},
				Category:    "resources", Rarity: RarityCommon,
			},
			{
				ID: "rumor_mill", Name: "Rumor Mill",
				Description: "Manipulate 100 times.",
				Condition:   Condition{Kind: CondActionCount, Counter: state.CounterManipulate, Count: 100},
				Reward:      Reward{Kind: RewardMultiplier, Resource: ledger.ManipulationPoints, Factor: 1.1},
				Category:    "actions", Rarity: RarityCommon,
			},
			{
				ID: "click_fiend", Name: "Click Fiend",
				Description: "Manipulate 10000 times.",
				Condition:   Condition{Kind: CondActionCount, Counter: state.CounterManipulate, Count: 10000},
				Reward:      Reward{Kind: RewardMultiplier, Resource: ledger.ManipulationPoints, Factor: 1.5},
				Category:    "actions", Rarity: RarityRare,
			},
			{
				ID: "kingmaker", Name: "Kingmaker",
				Description: "Accumulate 1000 influence.",
				Condition:   Condition{Kind: CondResourceThreshold, Resource: ledger.Influence, Threshold: 1000},
				Reward:      Reward{Kind: RewardMultiplier, Resource: ledger.Influence, Factor: 1.2},
				Category:    "resources", Rarity: RarityUncommon,
			},
			{
				ID: "medieval_mind", Name: "Medieval Mind",
				Description: "Unlock the Middle Ages.",
				Condition:   Condition{Kind: CondProgressionMilestone, EraID: "middle_ages"},
				Reward:      Reward{Kind: RewardBonus, Resource: ledger.Credibility, Amount: 25},
				Category:    "progression", Rarity: RarityCommon,
			},
			{
				ID: "age_of_noise", Name: "Age of Noise",
				Description: "Unlock the Digital Age.",
				Condition:   Condition{Kind: CondProgressionMilestone, EraID: "digital"},
				Reward:      Reward{Kind: RewardMultiplier, Resource: ledger.Networks, Factor: 1.5},
				Category:    "progression", Rarity: RarityRare,
			},
			{
				ID: "serial_propagandist", Name: "Serial Propagandist",
				Description: "Successfully propagate 3 theories.",
				Condition:   Condition{Kind: CondActionCount, Counter: "theories_propagated", Count: 3},
				Reward:      Reward{Kind: RewardMultiplier, Resource: ledger.Credibility, Factor: 1.25},
				Category:    "theories", Rarity: RarityUncommon,
			},
			{
				ID: "conscience_stirs", Name: "A Conscience Stirs",
				Description: "Perform your first ethical action.",
				Condition:   Condition{Kind: CondActionCount, Counter: "ethical_actions_performed", Count: 1},
				Reward:      Reward{Kind: RewardBonus, Resource: ledger.Influence, Amount: 20},
				Category:    "ethics", Rarity: RarityCommon,
			},
			{
				ID: "curious_reader", Name: "Curious Reader",
				Description: "Follow a lore link.",
				Condition:   Condition{Kind: CondSpecialFlag, Flag: "lore_link_clicked"},
				Reward:      Reward{Kind: RewardBonus, Resource: ledger.Credibility, Amount: 10},
				Secret:      true, Category: "secret", Rarity: RarityUncommon,
			},
			{
				ID: "road_to_damascus", Name: "Road to Damascus",
				Description: "Switch to revelation mode.",
				Condition:   Condition{Kind: CondSpecialFlag, Flag: "mode_switched"},
				Reward:      Reward{Kind: RewardFeature, Feature: "revelation_ui"},
				Secret:      true, Category: "secret", Rarity: RarityRare,
			},
			{
				ID: "redeemed_manipulator", Name: "Redeemed Manipulator",
				Description: "Reach full ethics after propagating at least five theories.",
				Condition: Condition{
					Kind: CondSpecificCombination,
					Predicate: func(s *state.GameState) bool {
						return s.EthicalScore >= 100 && s.Stats.TheoriesPropagated >= 5
					},
				},
				Reward:   Reward{Kind: RewardSpecial, Effect: "golden_dove"},
				Secret:   true, Category: "secret", Rarity: RarityLegendary,
			},
			{
				ID: "enlightened_era", Name: "Enlightened Era",
				Description: "Max critical thinking while every era is unlocked.",
				Condition: Condition{
					Kind: CondSpecificCombination,
					Predicate: func(s *state.GameState) bool {
						if s.CriticalThinking < 100 {
							return false
						}
						for _, e := range s.Eras {
							if !e.Unlocked {
								return false
							}
						}
						return true
					},
				},
				Reward:   Reward{Kind: RewardMultiplier, Resource: ledger.Influence, Factor: 2.0},
				Category: "ethics", Rarity: RarityLegendary,
			},
		},
	}

	c.buildIndex()
	return c
}
