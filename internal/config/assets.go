package config

// DefaultAssets returns the forest props shipped under assets/forest, with
// the scales that bring each model to stage units.
func DefaultAssets() []AssetConfig {
	return []AssetConfig{
		{Path: "assets/forest/pine.yaml", Scale: 0.02, PhysicsMaterial: PhysicsDefaultGround},
		{Path: "assets/forest/bush.yaml", Scale: 0.01, PhysicsMaterial: PhysicsDefaultGround},
		{Path: "assets/forest/thyme_bush.yaml", Scale: 1.3, PhysicsMaterial: PhysicsDefaultGround},
		{Path: "assets/forest/square_rock.yaml", Scale: 0.175, PhysicsMaterial: PhysicsDefaultGround},
		{Path: "assets/forest/large_dirt_pile.yaml", Scale: 0.075, PhysicsMaterial: PhysicsDefaultGround},
		{Path: "assets/forest/oak_tree_variation.yaml", Scale: 0.02, PhysicsMaterial: PhysicsDefaultGround},
		{Path: "assets/forest/moss_rock_photoscan.yaml", Scale: 0.015, PhysicsMaterial: PhysicsDefaultGround},
	}
}
