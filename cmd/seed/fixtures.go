package main

import "ewaste-exchange/internal/models"

type itemFixture struct {
	title    string
	category string
	grade    string
	price    float64
	weightKg float64
	aged     bool
}

type sellerFixture struct {
	firstName string
	lastName  string
	email     string
	address   models.Address
	items     []itemFixture
}

var sellerFixtures = []sellerFixture{
	{
		firstName: "Asha", lastName: "Kulkarni", email: "asha.kulkarni@example.com",
		address: models.Address{City: "Pune", Area: "Kothrud", Colony: "Karve Nagar",
			Coordinates: models.Coordinates{Lat: 18.4898, Lng: 73.8172}},
		items: []itemFixture{
			{title: "CRT Television", category: "tv", grade: "C", price: 800, weightKg: 18, aged: true},
			{title: "Dead UPS battery", category: "battery", grade: "D", price: 150, weightKg: 6.5, aged: true},
		},
	},
	{
		firstName: "Rohan", lastName: "Deshpande", email: "rohan.deshpande@example.com",
		address: models.Address{City: "Pune", Area: "Kothrud", Colony: "Ideal Colony",
			Coordinates: models.Coordinates{Lat: 18.5074, Lng: 73.8077}},
		items: []itemFixture{
			{title: "Desktop tower", category: "computer", grade: "C", price: 1200, weightKg: 9, aged: true},
			{title: "Laptop with cracked screen", category: "computer", grade: "B", price: 4000, weightKg: 2.2, aged: false},
		},
	},
	{
		firstName: "Meera", lastName: "Joshi", email: "meera.joshi@example.com",
		address: models.Address{City: "Pune", Area: "Baner", Colony: "Pan Card Club",
			Coordinates: models.Coordinates{Lat: 18.5590, Lng: 73.7868}},
		items: []itemFixture{
			{title: "Old refrigerator", category: "appliance", grade: "D", price: 2000, weightKg: 45, aged: true},
		},
	},
	{
		firstName: "Kabir", lastName: "Shah", email: "kabir.shah@example.com",
		address: models.Address{City: "Mumbai", Area: "Andheri", Colony: "Lokhandwala",
			Coordinates: models.Coordinates{Lat: 19.1416, Lng: 72.8256}},
		items: []itemFixture{
			{title: "Microwave oven", category: "appliance", grade: "C", price: 700, weightKg: 12, aged: true},
			{title: "Smartphone", category: "phone", grade: "A", price: 6000, weightKg: 0.2, aged: false},
		},
	},
}

var centerFixtures = []models.RecyclingCenter{
	{
		Name: "Kothrud E-Waste Collection Point", Address: "Paud Road, Kothrud, Pune",
		Phone: "+91 20 2543 0000", Hours: "Mon-Sat 9:00-18:00",
		Location:      models.Coordinates{Lat: 18.5050, Lng: 73.8120},
		AcceptedItems: []string{"computer", "phone", "battery"},
	},
	{
		Name: "Baner Green Recyclers", Address: "Baner Road, Baner, Pune",
		Phone: "+91 20 2729 0000", Hours: "Mon-Fri 10:00-17:00",
		Location:      models.Coordinates{Lat: 18.5610, Lng: 73.7800},
		AcceptedItems: []string{"appliance", "tv", "computer"},
	},
	{
		Name: "Andheri Scrap Hub", Address: "Link Road, Andheri West, Mumbai",
		Location:      models.Coordinates{Lat: 19.1360, Lng: 72.8300},
		AcceptedItems: []string{"appliance", "phone"},
	},
}
